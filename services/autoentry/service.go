package autoentry

import (
	"context"
	"log/slog"
	"time"

	"giftbot/lib/entrystore"
	"giftbot/lib/scrapers/steamgifts"
)

// Service runs one scan-then-enter cycle end to end. Everything is
// sequential: the account and the candidate pool belong to the single
// goroutine driving the cycle.
type Service struct {
	Session   *steamgifts.Client
	Scanner   Scanner
	Allocator Allocator
	// optional entry history, nil disables recording
	History *entrystore.Store
	// optional summary mail, nil disables it
	Email *EmailReporter
}

// RunCycle authenticates, scans, spends and reports. Failing to obtain
// an account snapshot is the only fatal error; everything past that
// point degrades per-page or per-candidate instead.
func (s Service) RunCycle(ctx context.Context) (RunSummary, error) {
	ctx, span := tracer.Start(ctx, "RunCycle")
	defer span.End()

	profile, err := s.Session.FetchProfile(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	account := Account{
		Name:      profile.Name,
		Points:    profile.Points,
		Level:     profile.Level,
		XsrfToken: profile.XsrfToken,
	}
	slog.InfoContext(ctx, "profile loaded", "name", account.Name, "points", account.Points, "level", account.Level)

	ranked := s.Scanner.Scan(ctx, account)
	slog.InfoContext(ctx, "scan finished", "candidates", len(ranked))

	startingPoints := account.Points
	entered, failed := s.Allocator.EnterAll(ctx, &account, ranked)

	if s.History != nil {
		now := time.Now()
		for _, c := range entered {
			err := s.History.Record(ctx, entrystore.Entry{
				Code:  c.Code,
				Name:  c.Name,
				Cost:  c.Cost,
				Score: c.Score,
				Time:  now,
			})
			if err != nil {
				slog.WarnContext(ctx, "could not record entry", "code", c.Code, "err", err)
			}
		}
	}

	summary := RunSummary{
		Account:        account,
		StartingPoints: startingPoints,
		Scanned:        len(ranked),
		Entered:        entered,
		Failed:         failed,
	}

	if s.Email != nil {
		err := s.Email.SendSummary(ctx, summary)
		if err != nil {
			slog.WarnContext(ctx, "could not send summary email", "err", err)
		}
	}

	return summary, nil
}
