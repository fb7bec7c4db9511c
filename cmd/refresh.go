package cmd

import (
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the session cookie",
	Long:  "Call the refresh endpoint once. The session is not ended if the call fails;\nthat only happens when a refresh triggered by a rejected request fails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Refresher.Refresh(cmd.Context()); err != nil {
			app.Presenter.Present(err)
			return notified(err)
		}
		app.Printer.Info("Session refreshed via %s", app.Refresher.Path())

		output := struct {
			Refreshed bool   `json:"refreshed"`
			BaseURL   string `json:"base_url"`
			Path      string `json:"path"`
		}{
			Refreshed: true,
			BaseURL:   app.Client.BaseURL(),
			Path:      app.Refresher.Path(),
		}
		return app.Printer.JSON(output)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
