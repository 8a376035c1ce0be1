package main

import (
	"context"

	"numicat-backend/cmd/numicat-cli/commands"
	"numicat-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "numicat-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
