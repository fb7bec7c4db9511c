package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var cookieCmd = &cobra.Command{
	Use:   "cookie",
	Short: "Seed or list session cookies",
}

var cookieSetCmd = &cobra.Command{
	Use:     "set NAME=VALUE",
	Short:   "Store a session cookie for the configured backend",
	Example: `  sessioncli cookie set session=eyJhbGciOi...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value, err := parseAssignment(args[0])
		if err != nil {
			return ExitWithError(ExitUserError, "%v", err)
		}
		if err := app.Session.Set(app.Client.BaseURL(), name, value); err != nil {
			return ExitWithError(ExitUserError, "setting cookie: %v", err)
		}
		if err := app.Session.Persist(); err != nil {
			return ExitWithError(ExitUserError, "saving cookies: %v", err)
		}
		app.Printer.Info("Cookie %q stored for %s", name, app.Client.BaseURL())
		return nil
	},
}

type cookieView struct {
	Origin  string     `json:"origin"`
	Name    string     `json:"name"`
	Value   string     `json:"value"`
	Path    string     `json:"path,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
}

var cookieListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cookies (values masked unless --show-values)",
	RunE: func(cmd *cobra.Command, args []string) error {
		show, _ := cmd.Flags().GetBool("show-values")

		views := []cookieView{}
		for _, e := range app.Session.Entries() {
			v := cookieView{
				Origin: e.Origin,
				Name:   e.Name,
				Value:  e.Value,
				Path:   e.Path,
			}
			if !show {
				v.Value = mask(e.Value)
			}
			if !e.Expires.IsZero() {
				exp := e.Expires
				v.Expires = &exp
			}
			views = append(views, v)
		}
		return app.Printer.JSON(views)
	},
}

// mask keeps the first four characters of a secret.
func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

func init() {
	cookieListCmd.Flags().Bool("show-values", false, "print cookie values in full")
	cookieCmd.AddCommand(cookieSetCmd, cookieListCmd)
	rootCmd.AddCommand(cookieCmd)
}
