package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"warble/internal/api"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var sessionFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "play <token-or-id>",
		Short: "Resolve a selection to a direct stream URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := strings.TrimSpace(args[0])
			if value == "" {
				return fmt.Errorf("token or external id is required")
			}

			path := "/play/" + url.PathEscape(value)
			if session := strings.TrimSpace(sessionFlag); session != "" {
				path += "?session=" + url.QueryEscape(session)
			}

			var resp api.StreamResponse
			if err := ctx.getJSON(path, &resp); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionFlag, "session", "", "Session the selection token belongs to")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw JSON response")
	return cmd
}
