package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/nicolasacchi/sessioncli/cmd"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	if err := cmd.Execute(Version); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
