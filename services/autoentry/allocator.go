package autoentry

import (
	"context"
	"log/slog"

	"giftbot/lib/scrapers/steamgifts"

	"go.opentelemetry.io/otel/attribute"
)

type EntrySubmitter interface {
	EnterGiveaway(ctx context.Context, xsrfToken, code string) (steamgifts.EntryResult, error)
}

// Failure records a candidate whose submission did not go through, with
// the raw remote response kept for diagnostics.
type Failure struct {
	Candidate Candidate
	Response  string
}

type Allocator struct {
	Submitter EntrySubmitter
}

// EnterAll walks the ranked list in order and greedily commits entries
// against the live balance. Too-expensive candidates are skipped without
// a submission attempt, and the loop keeps going: a cheaper candidate
// further down may still fit. The balance only moves on a confirmed
// success, and a failed submission is never retried within a run.
func (a Allocator) EnterAll(ctx context.Context, account *Account, ranked []Candidate) (entered []Candidate, failed []Failure) {
	ctx, span := tracer.Start(ctx, "EnterAll")
	defer span.End()

	for _, c := range ranked {
		if c.Cost > account.Points {
			slog.InfoContext(ctx, "skipping candidate, costs more than the balance", "name", c.Name, "cost", c.Cost, "points", account.Points)
			continue
		}

		result, err := a.Submitter.EnterGiveaway(ctx, account.XsrfToken, c.Code)
		if err != nil {
			slog.ErrorContext(ctx, "entry submission failed", "name", c.Name, "err", err)
			failed = append(failed, Failure{Candidate: c, Response: result.Raw})
			continue
		}
		if !result.Success() {
			slog.ErrorContext(ctx, "entry rejected", "name", c.Name, "response", result.Raw)
			failed = append(failed, Failure{Candidate: c, Response: result.Raw})
			continue
		}

		account.Points -= c.Cost
		entered = append(entered, c)
		slog.InfoContext(ctx, "entered giveaway", "name", c.Name, "cost", c.Cost, "points_left", account.Points)
	}

	span.SetAttributes(
		attribute.Int("entered", len(entered)),
		attribute.Int("failed", len(failed)),
		attribute.Int("points_left", account.Points),
	)
	return entered, failed
}
