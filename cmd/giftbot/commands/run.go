package commands

import (
	"fmt"
	"time"

	"giftbot/lib/configutil"
	"giftbot/lib/entrystore"
	"giftbot/lib/jitter"
	"giftbot/lib/scrapers/steamdb"
	"giftbot/lib/scrapers/steamgifts"
	"giftbot/lib/scrapers/steamstore"
	"giftbot/services/autoentry"

	"github.com/spf13/cobra"
)

type SearchConfig struct {
	LevelMin *int `json:"level_min"`
	LevelMax *int `json:"level_max"`
	EntryMin *int `json:"entry_min"`
	EntryMax *int `json:"entry_max"`
	PointMin *int `json:"point_min"`
	PointMax *int `json:"point_max"`

	UseScoreFilter         bool     `json:"use_score_filter"`
	ScoreMin               *float64 `json:"score_min"`
	ScoreMax               *float64 `json:"score_max"`
	DropFailedConstituents bool     `json:"drop_failed_constituents"`
}

type JitterConfig struct {
	PageMinMs   int `json:"page_min_ms"`
	PageMaxMs   int `json:"page_max_ms"`
	SubmitMinMs int `json:"submit_min_ms"`
	SubmitMaxMs int `json:"submit_max_ms"`
}

func (c JitterConfig) pageRange() *jitter.Range {
	if c.PageMaxMs == 0 {
		return nil
	}
	return &jitter.Range{
		Min: time.Duration(c.PageMinMs) * time.Millisecond,
		Max: time.Duration(c.PageMaxMs) * time.Millisecond,
	}
}

func (c JitterConfig) submitRange() *jitter.Range {
	if c.SubmitMaxMs == 0 {
		return nil
	}
	return &jitter.Range{
		Min: time.Duration(c.SubmitMinMs) * time.Millisecond,
		Max: time.Duration(c.SubmitMaxMs) * time.Millisecond,
	}
}

type Config struct {
	// the PHPSESSID cookie of a logged-in browser session
	SessionCookie string                `json:"session_cookie"`
	Search        SearchConfig          `json:"search"`
	Jitter        JitterConfig          `json:"jitter"`
	HistoryDb     string                `json:"history_db"`
	Smtp          *autoentry.SmtpConfig `json:"smtp"`
}

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs one scan-and-enter cycle against the configured account.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("giftbot.json5")
		if err != nil {
			fatal("failed to read giftbot.json5", err)
		}

		session, err := steamgifts.NewClient(steamgifts.ClientOptions{
			SessionCookie: cfg.SessionCookie,
			PageJitter:    cfg.Jitter.pageRange(),
			SubmitJitter:  cfg.Jitter.submitRange(),
		})
		if err != nil {
			fatal("failed to initialize the session client", err)
		}

		var scores autoentry.ScoreProvider
		if cfg.Search.UseScoreFilter {
			scores = autoentry.SteamScores{
				Ratings: steamdb.NewClient(steamdb.ClientOptions{
					FetchJitter: cfg.Jitter.pageRange(),
				}),
				Bundles: steamstore.NewClient(steamstore.ClientOptions{
					FetchJitter: cfg.Jitter.pageRange(),
				}),
				Options: autoentry.ScoreOptions{
					DropFailedConstituents: cfg.Search.DropFailedConstituents,
				},
			}
		}

		service := autoentry.Service{
			Session: session,
			Scanner: autoentry.Scanner{
				Listings: session,
				Scores:   scores,
				Options: autoentry.ScanOptions{
					Filter: steamgifts.SearchFilter{
						EntryMin: cfg.Search.EntryMin,
						EntryMax: cfg.Search.EntryMax,
						PointMin: cfg.Search.PointMin,
						PointMax: cfg.Search.PointMax,
					},
					Window: autoentry.ScoreWindow{
						Enabled: cfg.Search.UseScoreFilter,
						Min:     cfg.Search.ScoreMin,
						Max:     cfg.Search.ScoreMax,
					},
					LevelMin: cfg.Search.LevelMin,
					LevelMax: cfg.Search.LevelMax,
				},
			},
			Allocator: autoentry.Allocator{Submitter: session},
		}

		if cfg.HistoryDb != "" {
			store, err := entrystore.Open(cfg.HistoryDb)
			if err != nil {
				fatal("failed to open the entry history", err)
			}
			defer store.Close()
			service.History = &store
			service.Scanner.History = store
		}
		if cfg.Smtp != nil {
			service.Email = &autoentry.EmailReporter{Config: *cfg.Smtp}
		}

		summary, err := service.RunCycle(cmd.Context())
		if err != nil {
			fatal("could not start an authenticated session", err)
		}
		fmt.Println(summary.Render())
	},
}
