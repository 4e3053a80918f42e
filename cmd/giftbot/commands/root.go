package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"giftbot/lib/telemetry"

	"github.com/spf13/cobra"
)

var debug *bool

var rootCmd = &cobra.Command{
	Use:   "giftbot",
	Short: "giftbot scans a giveaway site and spends entry points on the best-rated listings.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*debug)
		err := telemetry.SetupFromEnv(cmd.Context(), "giftbot")
		if err != nil {
			fatal("failed to initialize telemetry", err)
		}
	},
}

func init() {
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Log every remote request.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
