package autoentry

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RunSummary is the end-of-cycle report handed to the console and the
// optional email notifier.
type RunSummary struct {
	Account        Account
	StartingPoints int
	Scanned        int
	Entered        []Candidate
	Failed         []Failure
}

func (s RunSummary) Render() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s: %d -> %d points", s.Account.Name, s.StartingPoints, s.Account.Points))
	t.AppendHeader(table.Row{"Giveaway", "Cost", "Score", "Result"})

	for _, c := range s.Entered {
		t.AppendRow(table.Row{c.Name, c.Cost, formatScore(c.Score), "entered"})
	}
	for _, f := range s.Failed {
		t.AppendRow(table.Row{f.Candidate.Name, f.Candidate.Cost, formatScore(f.Candidate.Score), "failed"})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d scanned", s.Scanned), "",
		"", fmt.Sprintf("%d entered, %d failed", len(s.Entered), len(s.Failed)),
	})

	t.SetStyle(table.StyleRounded)
	return t.Render()
}

func formatScore(score float64) string {
	if score == ScoreUnknown {
		return "?"
	}
	return fmt.Sprintf("%.1f", score)
}
