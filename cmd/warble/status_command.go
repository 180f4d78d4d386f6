package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warble/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and dependency health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp api.DaemonStatus
			if err := ctx.getJSON("/api/status", &resp); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running: %s\n", yesNo(resp.Running))
			fmt.Fprintf(out, "PID: %d\n", resp.PID)
			fmt.Fprintf(out, "Active sessions: %d\n", resp.ActiveSessions)
			fmt.Fprintf(out, "Jobs database: %s\n", resp.JobsDBPath)
			fmt.Fprintf(out, "Lock file: %s\n", resp.LockFilePath)
			fmt.Fprintf(out, "Log file: %s\n", resp.LogFilePath)

			if len(resp.Dependencies) > 0 {
				rows := make([][]string, 0, len(resp.Dependencies))
				for _, dep := range resp.Dependencies {
					detail := dep.Detail
					if detail == "" && dep.Available {
						detail = dep.Command
					}
					rows = append(rows, []string{dep.Name, yesNo(dep.Available), detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Dependency", "Available", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw JSON response")
	return cmd
}
