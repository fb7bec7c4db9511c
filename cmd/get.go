package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/sessioncli/internal/fetch"
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Fetch a resource and print its data",
	Long:  "GET a path on the backend and print the data field of the reply.\nFailures are shown as a notification on stderr.",
	Example: `  sessioncli get /users/me
  sessioncli get /items/42 | jq .name`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := fetch.Get[json.RawMessage](cmd.Context(), app.Fetcher, args[0])
		if !res.OK() {
			return notified(res.Err)
		}
		if len(res.Data) == 0 {
			return app.Printer.RawJSON([]byte("null"))
		}
		return app.Printer.RawJSON(res.Data)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
