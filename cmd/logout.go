package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicolasacchi/sessioncli/internal/session"
)

// terminator ends the local session when a refresh after a 401 fails.
type terminator struct {
	store *session.Store
}

func (t *terminator) Logout() error {
	if err := t.store.Logout(); err != nil {
		return err
	}
	app.Printer.Warn("Session expired and could not be renewed. Seed a new one with: sessioncli cookie set NAME=VALUE")
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget all session cookies",
	RunE: func(cmd *cobra.Command, args []string) error {
		dropped := len(app.Session.Entries())
		if err := app.Session.Logout(); err != nil {
			return ExitWithError(ExitUserError, "ending session: %v", err)
		}
		app.Printer.Info("Removed %d cookie(s)", dropped)

		output := struct {
			LoggedOut bool   `json:"logged_out"`
			Removed   int    `json:"removed"`
			File      string `json:"file"`
		}{
			LoggedOut: true,
			Removed:   dropped,
			File:      app.Session.Path(),
		}
		return app.Printer.JSON(output)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
