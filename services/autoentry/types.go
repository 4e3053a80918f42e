package autoentry

import (
	"slices"

	"giftbot/lib/scrapers/steamgifts"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/autoentry")

// ScoreUnknown marks a candidate whose product could not be evaluated.
// It is excluded from ranking preference (sorts below every real score)
// but is not rejected outright.
const ScoreUnknown float64 = -1

// Account is the local mirror of the remote profile for one run. Points
// only go down, and only on a confirmed entry; the remote site stays the
// source of truth.
type Account struct {
	Name      string
	Points    int
	Level     int
	XsrfToken string
}

type Candidate struct {
	Name    string
	Product steamgifts.ProductRef
	Cost    int
	Score   float64
	// the listing code used to submit an entry
	Code string
}

// Pool accumulates candidates during a scan. No two candidates share a
// listing code.
type Pool struct {
	candidates []Candidate
	codes      map[string]struct{}
	totalCost  int
}

func NewPool() *Pool {
	return &Pool{codes: map[string]struct{}{}}
}

// Add inserts the candidate unless its listing code is already pooled.
func (p *Pool) Add(c Candidate) bool {
	if _, ok := p.codes[c.Code]; ok {
		return false
	}
	p.codes[c.Code] = struct{}{}
	p.candidates = append(p.candidates, c)
	p.totalCost += c.Cost
	return true
}

func (p *Pool) Len() int {
	return len(p.candidates)
}

// TotalCost is the running sum of pooled entry costs, the discovered
// opportunity value of the scan so far.
func (p *Pool) TotalCost() int {
	return p.totalCost
}

// Ranked returns the pooled candidates sorted by score descending, ties
// broken by higher cost first: among equally rated products the pricier
// entry goes first so cheaper equals stay available for leftover budget.
func (p *Pool) Ranked() []Candidate {
	ranked := slices.Clone(p.candidates)
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return b.Cost - a.Cost
	})
	return ranked
}
