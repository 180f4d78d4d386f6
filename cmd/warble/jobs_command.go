package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warble/internal/api"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent fetch jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp api.JobListResponse
			if err := ctx.getJSON(fmt.Sprintf("/api/jobs?limit=%d", limit), &resp); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Jobs) == 0 {
				fmt.Fprintln(out, "No fetch jobs recorded")
				return nil
			}

			rows := make([][]string, 0, len(resp.Jobs))
			for _, job := range resp.Jobs {
				errText := job.Error
				if len(errText) > 60 {
					errText = errText[:57] + "..."
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", job.ID),
					job.ExternalID,
					job.Status,
					fmt.Sprintf("%.0f%%", job.Percent),
					errText,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "External ID", "Status", "Progress", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw JSON response")
	return cmd
}
