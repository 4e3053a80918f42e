package autoentry

import (
	"context"
	"log/slog"

	"giftbot/lib/scrapers/steamgifts"
)

type RatingSource interface {
	AppRating(ctx context.Context, appID string) (float64, error)
}

type BundleSource interface {
	BundleApps(ctx context.Context, bundleID string) ([]string, error)
}

type ScoreOptions struct {
	// DropFailedConstituents excludes bundle constituents whose rating
	// lookup failed from the mean's denominator. Off, they count as 0,
	// dragging the bundle down instead of being ignored.
	DropFailedConstituents bool
}

// SteamScores scores products through the external rating site: a direct
// lookup for single apps, the arithmetic mean of constituent ratings for
// bundles.
type SteamScores struct {
	Ratings RatingSource
	Bundles BundleSource
	Options ScoreOptions
}

func (s SteamScores) Score(ctx context.Context, ref steamgifts.ProductRef) float64 {
	ctx, span := tracer.Start(ctx, "Score")
	defer span.End()

	switch ref.Kind {
	case steamgifts.ProductApp:
		return s.appScore(ctx, ref.ID)
	case steamgifts.ProductBundle:
		return s.bundleScore(ctx, ref.ID)
	}
	slog.WarnContext(ctx, "cannot score unknown product kind", "kind", ref.Kind)
	return ScoreUnknown
}

func (s SteamScores) appScore(ctx context.Context, appID string) float64 {
	rating, err := s.Ratings.AppRating(ctx, appID)
	if err != nil {
		slog.WarnContext(ctx, "could not resolve app rating", "app", appID, "err", err)
		return ScoreUnknown
	}
	return rating
}

func (s SteamScores) bundleScore(ctx context.Context, bundleID string) float64 {
	apps, err := s.Bundles.BundleApps(ctx, bundleID)
	if err != nil {
		slog.WarnContext(ctx, "could not resolve bundle constituents", "bundle", bundleID, "err", err)
		return 0
	}
	if len(apps) == 0 {
		return 0
	}

	sum := 0.0
	counted := 0
	for _, app := range apps {
		rating, err := s.Ratings.AppRating(ctx, app)
		if err != nil {
			slog.WarnContext(ctx, "could not resolve constituent rating", "bundle", bundleID, "app", app, "err", err)
			if !s.Options.DropFailedConstituents {
				counted++
			}
			continue
		}
		sum += rating
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}
