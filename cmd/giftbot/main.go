package main

import (
	"context"

	"giftbot/cmd/giftbot/commands"
	"giftbot/lib/telemetry"
)

func main() {
	ctx := context.Background()
	commands.ExecuteContext(ctx)
	telemetry.Shutdown(ctx)
}
