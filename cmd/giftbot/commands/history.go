package commands

import (
	"os"

	"giftbot/lib/entrystore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyDb    *string
	historyLimit *int
)

func init() {
	historyDb = historyCmd.Flags().String("db", "giftbot.db", "The entry history database to read.")
	historyLimit = historyCmd.Flags().Int("limit", 25, "How many entries to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--db <path/to/history.db>] [--limit <n>]",
	Short: "Prints the most recently entered giveaways.",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := entrystore.Open(*historyDb)
		if err != nil {
			fatal("failed to open the entry history", err)
		}
		defer store.Close()

		entries, err := store.Recent(cmd.Context(), *historyLimit)
		if err != nil {
			fatal("failed to read the entry history", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Entered", "Giveaway", "Cost", "Score"})

		for _, e := range entries {
			t.AppendRow(table.Row{
				e.Time.Format("2006-01-02 15:04"),
				e.Name,
				e.Cost,
				e.Score,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
