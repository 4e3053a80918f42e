package autoentry

import (
	"context"
	"log/slog"

	"giftbot/lib/scrapers/steamgifts"

	"go.opentelemetry.io/otel/attribute"
)

type ListingSource interface {
	FetchSearchPage(ctx context.Context, filter steamgifts.SearchFilter, level, page int) (steamgifts.SearchPage, error)
}

type ScoreProvider interface {
	// Score never fails, an unevaluable product yields ScoreUnknown.
	Score(ctx context.Context, ref steamgifts.ProductRef) float64
}

// EnteredChecker answers whether a listing was already entered in an
// earlier run.
type EnteredChecker interface {
	Contains(ctx context.Context, code string) (bool, error)
}

// ScoreWindow is the score-based rejection policy. When disabled every
// candidate passes. ScoreUnknown is "unknown", not a verdict, so it
// passes both bounds unconditionally.
type ScoreWindow struct {
	Enabled bool
	Min     *float64
	Max     *float64
}

func (w ScoreWindow) Admit(score float64) bool {
	if !w.Enabled || score == ScoreUnknown {
		return true
	}
	if w.Min != nil && score < *w.Min {
		return false
	}
	if w.Max != nil && score > *w.Max {
		return false
	}
	return true
}

type ScanOptions struct {
	Filter steamgifts.SearchFilter
	Window ScoreWindow
	// floor for the level descent, defaults to 0
	LevelMin *int
	// cap on the starting level, clamped to the account level
	LevelMax *int
}

// Scanner walks the level-stratified paginated search and accumulates
// candidates until enough opportunity value is discovered.
type Scanner struct {
	Listings ListingSource
	// nil disables scoring entirely, every candidate stays ScoreUnknown
	Scores ScoreProvider
	// nil disables the cross-run entered check
	History EnteredChecker
	Options ScanOptions
}

// targetCost is the minimum aggregate candidate cost a scan hunts for:
// enough discovered opportunity to spend the balance threefold, with a
// floor of 200 points for near-empty balances.
func targetCost(points int) int {
	if t := points * 3; t > 200 {
		return t
	}
	return 200
}

// Scan discovers and ranks entry candidates for the account. It never
// fails outright: page-level trouble ends the current level and the
// descent continues, at worst yielding an empty list.
//
// Pages ascend within a level; a no-results (or malformed) page steps
// the level down by one and resets the page counter. Higher levels are
// scarcer, so the descent is what guarantees termination even when no
// candidate exists at all.
func (s Scanner) Scan(ctx context.Context, account Account) []Candidate {
	ctx, span := tracer.Start(ctx, "Scan")
	defer span.End()

	target := targetCost(account.Points)
	span.SetAttributes(attribute.Int("target_cost", target))

	level := account.Level
	if s.Options.LevelMax != nil && *s.Options.LevelMax < level {
		level = *s.Options.LevelMax
	}
	floor := 0
	if s.Options.LevelMin != nil && *s.Options.LevelMin > floor {
		floor = *s.Options.LevelMin
	}

	pool := NewPool()
	page := 1
	for pool.TotalCost() < target && level >= floor {
		result, err := s.Listings.FetchSearchPage(ctx, s.Options.Filter, level, page)
		if err != nil {
			slog.WarnContext(ctx, "search page failed, ending level", "level", level, "page", page, "err", err)
			level--
			page = 1
			continue
		}

		switch result.Kind {
		case steamgifts.PageNoResults:
			slog.InfoContext(ctx, "level exhausted", "level", level, "pages", page-1)
			level--
			page = 1
		case steamgifts.PageMalformed:
			slog.WarnContext(ctx, "malformed search page, ending level", "level", level, "page", page)
			level--
			page = 1
		default:
			for _, row := range result.Rows {
				s.consider(ctx, pool, row)
			}
			page++
		}
	}

	span.SetAttributes(
		attribute.Int("candidates", pool.Len()),
		attribute.Int("total_cost", pool.TotalCost()),
	)
	return pool.Ranked()
}

func (s Scanner) consider(ctx context.Context, pool *Pool, row steamgifts.ListingRow) {
	if row.Entered {
		slog.DebugContext(ctx, "already entered", "name", row.Name)
		return
	}
	if s.History != nil {
		entered, err := s.History.Contains(ctx, row.Code)
		if err != nil {
			slog.WarnContext(ctx, "entry history lookup failed", "code", row.Code, "err", err)
		} else if entered {
			slog.DebugContext(ctx, "entered in an earlier run", "name", row.Name)
			return
		}
	}

	score := ScoreUnknown
	if s.Scores != nil {
		score = s.Scores.Score(ctx, row.Product)
	}
	if !s.Options.Window.Admit(score) {
		slog.InfoContext(ctx, "rejected candidate, score outside window", "name", row.Name, "score", score)
		return
	}

	added := pool.Add(Candidate{
		Name:    row.Name,
		Product: row.Product,
		Cost:    row.Cost,
		Score:   score,
		Code:    row.Code,
	})
	if !added {
		slog.DebugContext(ctx, "duplicate listing", "code", row.Code)
		return
	}
	slog.InfoContext(ctx, "admitted candidate", "name", row.Name, "cost", row.Cost, "score", score)
}
