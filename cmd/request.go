package cmd

import (
	"encoding/json"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/sessioncli/internal/api"
)

var requestCmd = &cobra.Command{
	Use:   "request <method> <path>",
	Short: "Send an arbitrary request and print the reply envelope",
	Example: `  sessioncli request POST /items --data '{"name":"lamp"}'
  sessioncli request DELETE /items/42 -H 'If-Match: "v3"'
  sessioncli request GET /items --query page=2 --raw`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _ := cmd.Flags().GetString("data")
		headers, _ := cmd.Flags().GetStringArray("header")
		queries, _ := cmd.Flags().GetStringArray("query")
		notify, _ := cmd.Flags().GetBool("notify")

		var body interface{}
		if data != "" {
			if !json.Valid([]byte(data)) {
				return ExitWithError(ExitUserError, "--data is not valid JSON")
			}
			body = json.RawMessage(data)
		}

		req, err := api.NewRequest(args[0], args[1], body)
		if err != nil {
			return ExitWithError(ExitUserError, "%v", err)
		}
		for _, h := range headers {
			k, v, err := parseHeader(h)
			if err != nil {
				return ExitWithError(ExitUserError, "%v", err)
			}
			req.Header.Add(k, v)
		}
		for _, q := range queries {
			k, v, err := parseAssignment(q)
			if err != nil {
				return ExitWithError(ExitUserError, "--query: %v", err)
			}
			if req.Query == nil {
				req.Query = url.Values{}
			}
			req.Query.Add(k, v)
		}

		resp, err := app.Client.Do(cmd.Context(), req)
		if err != nil {
			if notify {
				app.Presenter.Present(err)
				return notified(err)
			}
			if resp != nil && app.Printer.IsRaw() {
				_ = app.Printer.RawJSON(resp.Body)
			}
			return ExitWithError(failureCode(err), "%v", err)
		}

		if app.Printer.IsRaw() {
			return app.Printer.RawJSON(resp.Body)
		}
		env, err := api.Decode[json.RawMessage](resp)
		if err != nil {
			return ExitWithError(ExitAPIError, "decoding response: %v", err)
		}
		return app.Printer.JSON(env)
	},
}

func init() {
	requestCmd.Flags().StringP("data", "d", "", "JSON request body")
	requestCmd.Flags().StringArrayP("header", "H", nil, "extra header as 'Name: value' (repeatable)")
	requestCmd.Flags().StringArray("query", nil, "query parameter as key=value (repeatable)")
	requestCmd.Flags().Bool("notify", false, "report failures as a notification instead of an error line")
	rootCmd.AddCommand(requestCmd)
}
