package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"warble/internal/api"
	"warble/internal/textutil"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var sessionFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for a song and list selection tokens",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query is required")
			}

			var resp api.SearchResponse
			req := api.SearchRequest{Query: query, SessionID: strings.TrimSpace(sessionFlag)}
			if err := ctx.postJSON("/search", req, &resp); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Results) == 0 {
				fmt.Fprintln(out, "No results")
				return nil
			}

			rows := make([][]string, 0, len(resp.Results))
			for i, result := range resp.Results {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					textutil.DisplayTitle(result.Title),
					result.ID,
					result.Token,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "ID", "Token"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Session: %s\n", resp.SessionID)
			fmt.Fprintln(out, "Fetch a track with `warble fetch <token> --session <session>`")
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionFlag, "session", "", "Reuse an existing search session")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw JSON response")
	return cmd
}
