package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/sessioncli/internal/session"
)

type cookieStatus struct {
	Name    string          `json:"name"`
	Origin  string          `json:"origin"`
	Expires *time.Time      `json:"expires,omitempty"`
	Token   *session.Claims `json:"token,omitempty"`
}

type statusOutput struct {
	BaseURL      string         `json:"base_url"`
	RefreshPath  string         `json:"refresh_path"`
	Interceptors []string       `json:"interceptors"`
	CookieFile   string         `json:"cookie_file"`
	Cookies      []cookieStatus `json:"cookies"`
	Session      string         `json:"session,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend address and stored session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")
		now := time.Now()

		output := statusOutput{
			BaseURL:      app.Client.BaseURL(),
			RefreshPath:  app.Refresher.Path(),
			Interceptors: app.Client.Interceptors(),
			CookieFile:   app.Session.Path(),
			Cookies:      []cookieStatus{},
		}

		app.Printer.Info("Backend: %s (refresh: %s)", output.BaseURL, output.RefreshPath)
		fmt.Fprintln(os.Stderr)

		entries := app.Session.Entries()
		if len(entries) == 0 {
			app.Printer.Info("No session cookies stored. Run: sessioncli cookie set NAME=VALUE")
		} else {
			w := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "COOKIE\tORIGIN\tEXPIRES\tSUBJECT\tTOKEN EXPIRES\n")
			fmt.Fprintf(w, "------\t------\t-------\t-------\t-------------\n")

			for _, e := range entries {
				cs := cookieStatus{Name: e.Name, Origin: e.Origin}
				expires := "session"
				if !e.Expires.IsZero() {
					exp := e.Expires
					cs.Expires = &exp
					expires = exp.Local().Format("2006-01-02 15:04")
				}

				subject, tokenExp := "-", "-"
				if claims, err := session.Inspect(e.Value, now); err == nil {
					cs.Token = claims
					if claims.Subject != "" {
						subject = claims.Subject
					}
					if !claims.ExpiresAt.IsZero() {
						tokenExp = claims.ExpiresAt.Local().Format("2006-01-02 15:04")
						if claims.Expired {
							tokenExp += " (EXPIRED)"
						}
					}
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Origin, expires, subject, tokenExp)
				output.Cookies = append(output.Cookies, cs)
			}
			w.Flush()
		}

		if check {
			if err := app.Refresher.Refresh(cmd.Context()); err != nil {
				output.Session = "expired"
				app.Printer.Warn("session could not be refreshed: %v", err)
			} else {
				output.Session = "active"
				app.Printer.Info("Session is active")
			}
		}

		return app.Printer.JSON(output)
	},
}

func init() {
	statusCmd.Flags().Bool("check", false, "call the refresh endpoint to verify the session is still renewable")
	rootCmd.AddCommand(statusCmd)
}
