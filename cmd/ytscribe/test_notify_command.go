package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "test-notify",
		Short:       "Send a test notification",
		Annotations: skipConfig(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := ctx.diagnosticConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, "ntfy topic not configured")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				fmt.Fprintln(out, "Notification not sent")
				return err
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
