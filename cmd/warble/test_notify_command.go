package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warble/internal/api"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp api.TestNotificationResponse
			if err := ctx.postJSON("/api/test-notification", struct{}{}, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}
