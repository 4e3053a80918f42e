package autoentry

import (
	"context"
	"fmt"
	"testing"

	"giftbot/lib/scrapers/steamgifts"
	"giftbot/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type stubRatings map[string]float64

func (s stubRatings) AppRating(ctx context.Context, appID string) (float64, error) {
	if v, ok := s[appID]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("no rating present")
}

type stubBundles map[string][]string

func (s stubBundles) BundleApps(ctx context.Context, bundleID string) ([]string, error) {
	apps, ok := s[bundleID]
	if !ok {
		return nil, fmt.Errorf("bundle page unparseable")
	}
	return apps, nil
}

func appRef(id string) steamgifts.ProductRef {
	return steamgifts.ProductRef{Kind: steamgifts.ProductApp, ID: id}
}

func bundleRef(id string) steamgifts.ProductRef {
	return steamgifts.ProductRef{Kind: steamgifts.ProductBundle, ID: id}
}

func TestAppScore(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/autoentry")
	defer cleanup()

	scores := SteamScores{Ratings: stubRatings{"10": 87.3}}

	require.Equal(t, 87.3, scores.Score(context.Background(), appRef("10")))
	require.Equal(t, ScoreUnknown, scores.Score(context.Background(), appRef("404")))
}

func TestBundleMean(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/autoentry")
	defer cleanup()

	scores := SteamScores{
		Ratings: stubRatings{"1": 80, "2": 60, "3": 40},
		Bundles: stubBundles{"sub1": {"1", "2", "3"}},
	}

	require.Equal(t, 60.0, scores.Score(context.Background(), bundleRef("sub1")))
}

func TestBundleWithoutConstituents(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/autoentry")
	defer cleanup()

	scores := SteamScores{
		Ratings: stubRatings{},
		Bundles: stubBundles{"empty": {}},
	}

	// an empty bundle and a fully-unparseable one both score 0
	require.Equal(t, 0.0, scores.Score(context.Background(), bundleRef("empty")))
	require.Equal(t, 0.0, scores.Score(context.Background(), bundleRef("broken")))
}

func TestBundleFailedConstituentPolicy(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/autoentry")
	defer cleanup()

	ratings := stubRatings{"1": 90}
	bundles := stubBundles{"sub1": {"1", "404"}}

	// default: the failed constituent counts as 0 in the denominator
	counting := SteamScores{Ratings: ratings, Bundles: bundles}
	require.Equal(t, 45.0, counting.Score(context.Background(), bundleRef("sub1")))

	// dropped: the mean only covers constituents that resolved
	dropping := SteamScores{
		Ratings: ratings,
		Bundles: bundles,
		Options: ScoreOptions{DropFailedConstituents: true},
	}
	require.Equal(t, 90.0, dropping.Score(context.Background(), bundleRef("sub1")))
}

func TestUnknownProductKind(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/autoentry")
	defer cleanup()

	scores := SteamScores{Ratings: stubRatings{}, Bundles: stubBundles{}}

	require.Equal(t, ScoreUnknown, scores.Score(context.Background(), steamgifts.ProductRef{}))
}

func TestScoreDeterminism(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/autoentry")
	defer cleanup()

	scores := SteamScores{
		Ratings: stubRatings{"1": 80, "2": 61},
		Bundles: stubBundles{"sub1": {"1", "2"}},
	}

	for _, ref := range []steamgifts.ProductRef{appRef("1"), bundleRef("sub1"), appRef("404")} {
		first := scores.Score(context.Background(), ref)
		second := scores.Score(context.Background(), ref)
		require.Equal(t, first, second)
	}
}
