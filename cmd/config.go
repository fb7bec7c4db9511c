package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/sessioncli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sessioncli configuration",
	Example: `  sessioncli config
  sessioncli config --init
  sessioncli config --base-url https://api.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initFlag, _ := cmd.Flags().GetBool("init")
		if initFlag {
			return runConfigInit(cmd)
		}
		if cmd.Flags().Changed("base-url") || cmd.Flags().Changed("refresh-path") {
			return runConfigSet(cmd)
		}
		return runConfigShow(cmd)
	},
}

func init() {
	configCmd.Flags().Bool("init", false, "run interactive setup wizard")
	configCmd.Flags().String("base-url", "", "set the backend base URL")
	configCmd.Flags().String("refresh-path", "", "set the session refresh endpoint path")
	rootCmd.AddCommand(configCmd)
}

// prompt reads one line, returning def when the answer is empty.
func prompt(reader *bufio.Reader, question, def string) string {
	app.Printer.Info("%s (default: %s):", question, def)
	answer, _ := reader.ReadString('\n')
	if answer = strings.TrimSpace(answer); answer != "" {
		return answer
	}
	return def
}

func runConfigInit(cmd *cobra.Command) error {
	reader := bufio.NewReader(os.Stdin)

	dir, err := config.EnsureDir(flagConfig)
	if err != nil {
		return ExitWithError(ExitUserError, "creating config directory: %v", err)
	}
	app.Printer.Info("Config directory: %s", dir)

	_, cfgPath, err := config.Paths(flagConfig)
	if err != nil {
		return ExitWithError(ExitUserError, "resolving config path: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return ExitWithError(ExitUserError, "loading config: %v", err)
	}

	cfg.BaseURL = prompt(reader, "Backend base URL", cfg.ResolvedBaseURL())
	cfg.RefreshPath = prompt(reader, "Session refresh path", cfg.ResolvedRefreshPath())

	app.Printer.Info("Coalesce concurrent refreshes into one call? [y/N]")
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	cfg.SharedRefresh = answer == "y" || answer == "yes"

	if err := cfg.Validate(); err != nil {
		return ExitWithError(ExitUserError, "%v", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return ExitWithError(ExitUserError, "saving config: %v", err)
	}
	app.Printer.Info("Configuration saved to: %s", cfgPath)
	app.Printer.Info("Seed a session with: sessioncli cookie set NAME=VALUE")
	app.Printer.Info("Then verify it with: sessioncli status --check")
	return nil
}

func runConfigSet(cmd *cobra.Command) error {
	if _, err := config.EnsureDir(flagConfig); err != nil {
		return ExitWithError(ExitUserError, "creating config directory: %v", err)
	}
	_, cfgPath, err := config.Paths(flagConfig)
	if err != nil {
		return ExitWithError(ExitUserError, "resolving config path: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return ExitWithError(ExitUserError, "loading config: %v", err)
	}

	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL, _ = cmd.Flags().GetString("base-url")
	}
	if cmd.Flags().Changed("refresh-path") {
		cfg.RefreshPath, _ = cmd.Flags().GetString("refresh-path")
	}
	if err := cfg.Validate(); err != nil {
		return ExitWithError(ExitUserError, "%v", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return ExitWithError(ExitUserError, "saving config: %v", err)
	}
	app.Printer.Info("Configuration saved to: %s", cfgPath)
	return runConfigShow(cmd)
}

func runConfigShow(cmd *cobra.Command) error {
	_, cfgPath, err := config.Paths(flagConfig)
	if err != nil {
		return ExitWithError(ExitUserError, "resolving config path: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return ExitWithError(ExitUserError, "loading config: %v", err)
	}

	output := struct {
		BaseURL       string  `json:"base_url"`
		RefreshPath   string  `json:"refresh_path"`
		SharedRefresh bool    `json:"shared_refresh"`
		RateLimit     float64 `json:"rate_limit"`
		UserAgent     string  `json:"user_agent,omitempty"`
		ConfigPath    string  `json:"config_path"`
	}{
		BaseURL:       cfg.ResolvedBaseURL(),
		RefreshPath:   cfg.ResolvedRefreshPath(),
		SharedRefresh: cfg.SharedRefresh,
		RateLimit:     cfg.RateLimit,
		UserAgent:     cfg.UserAgent,
		ConfigPath:    cfgPath,
	}

	return app.Printer.JSON(output)
}
