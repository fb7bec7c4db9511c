package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/nicolasacchi/sessioncli/internal/api"
	"github.com/nicolasacchi/sessioncli/internal/config"
	"github.com/nicolasacchi/sessioncli/internal/fetch"
	"github.com/nicolasacchi/sessioncli/internal/notify"
	"github.com/nicolasacchi/sessioncli/internal/output"
	"github.com/nicolasacchi/sessioncli/internal/session"
)

const (
	ExitSuccess   = 0
	ExitUserError = 1
	ExitAPIError  = 2
	ExitAuthError = 3
)

// App holds shared dependencies for all subcommands. It is filled once in
// PersistentPreRunE and never rebuilt.
type App struct {
	Config     *config.Config
	ConfigPath string
	Client     *api.Client
	Refresher  *api.Refresher
	Session    *session.Store
	Printer    *output.Printer
	Presenter  *notify.Presenter
	Fetcher    *fetch.Fetcher
}

var (
	app         App
	flagPretty  bool
	flagCompact bool
	flagRaw     bool
	flagQuiet   bool
	flagConfig  string
	version     string
)

var rootCmd = &cobra.Command{
	Use:           "sessioncli",
	Short:         "Client for cookie-session JSON backends",
	Long:          "Call a cookie-session JSON backend from the terminal.\nExpired sessions are refreshed and the failed call replayed once.\nOutputs structured JSON to stdout for piping into jq.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize printer first (always needed)
		mode := output.ModeFromFlags(flagPretty, flagCompact, flagRaw)
		app.Printer = output.NewPrinter(os.Stdout, os.Stderr, mode, flagQuiet)

		// Commands that don't need full config/client initialization
		if skipInit(cmd) {
			return nil
		}

		configDir, cfgPath, err := config.Paths(flagConfig)
		if err != nil {
			return ExitWithError(ExitUserError, "config path: %v", err)
		}
		app.ConfigPath = cfgPath

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return ExitWithError(ExitUserError, "loading config: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			return ExitWithError(ExitUserError, "%v. Run: sessioncli config --init", err)
		}
		app.Config = cfg

		store, err := session.NewStore(configDir)
		if err != nil {
			return ExitWithError(ExitAuthError, "loading session: %v", err)
		}
		app.Session = store

		app.Client = api.NewClient(clientOptions(cfg, store)...)

		refreshOpts := []api.RefresherOption{api.WithRefreshPath(cfg.ResolvedRefreshPath())}
		if cfg.SharedRefresh {
			refreshOpts = append(refreshOpts, api.WithSharedRefresh())
		}
		app.Refresher = api.NewRefresher(app.Client, refreshOpts...)

		api.NewSessionInterceptor(app.Refresher, &terminator{store: store}, app.Printer).Attach(app.Client)

		app.Presenter = notify.NewPresenter(app.Printer)
		app.Fetcher = fetch.New(app.Client, app.Presenter)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "force pretty-printed JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "force compact JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagRaw, "raw", false, "output raw response bodies without transformation")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress informational messages on stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
}

func clientOptions(cfg *config.Config, store *session.Store) []api.ClientOption {
	opts := []api.ClientOption{
		api.WithBaseURL(cfg.ResolvedBaseURL()),
		api.WithCookieJar(store),
		api.WithLogger(app.Printer),
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "sessioncli/" + version
	}
	opts = append(opts, api.WithUserAgent(ua))

	if cfg.RateLimit > 0 {
		opts = append(opts, api.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)))
	}
	return opts
}

// Execute runs the root command. Called from main.
func Execute(v string) error {
	version = v
	rootCmd.Version = v

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)

	// Persist session cookies on exit
	if app.Session != nil {
		if perr := app.Session.Persist(); perr != nil && app.Printer != nil {
			app.Printer.Warn("could not save session cookies: %v", perr)
		}
	}

	var ee *exitErr
	if err != nil && !errors.As(err, &ee) {
		// Cobra usage errors never reach ExitWithError.
		fmt.Fprintf(os.Stderr, "sessioncli: %v\n", err)
	}
	return err
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUserError
}

// skipInit returns true for commands that need no config or client at all.
func skipInit(cmd *cobra.Command) bool {
	switch fullCmdName(cmd) {
	case "sessioncli config", "sessioncli statuses":
		return true
	}
	return false
}

func fullCmdName(cmd *cobra.Command) string {
	var parts []string
	for c := cmd; c != nil; c = c.Parent() {
		parts = append([]string{c.Name()}, parts...)
	}
	return strings.Join(parts, " ")
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// ExitWithError prints an error to stderr and returns an error for the exit code.
func ExitWithError(code int, format string, args ...interface{}) error {
	app.Printer.Error(format, args...)
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// notified converts a failure that was already shown as a notification into
// an exit error without printing it again.
func notified(err error) error {
	code := ExitAPIError
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ExitCode()
	}
	return &exitErr{code: code, msg: err.Error()}
}

// failureCode picks the exit code for an API-layer error.
func failureCode(err error) int {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ExitCode()
	}
	return ExitAPIError
}
