package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicolasacchi/sessioncli/internal/api"
)

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the status codes the backend reports and their names",
	RunE: func(cmd *cobra.Command, args []string) error {
		type entry struct {
			Code int    `json:"code"`
			Name string `json:"name"`
		}
		out := []entry{}
		for _, code := range api.StatusCodes() {
			out = append(out, entry{Code: code, Name: api.StatusName(code)})
		}
		return app.Printer.JSON(out)
	},
}

func init() {
	rootCmd.AddCommand(statusesCmd)
}
