package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"releasewatch/internal/config"
	"releasewatch/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateNotifications(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			service, err := notifications.NewService(cfg, logger)
			if err != nil {
				return err
			}
			if err := service.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			out := cmd.OutOrStdout()
			if cfg.Notifications.Transport == config.TransportNone {
				fmt.Fprintln(out, "Notification transport is none; nothing was sent")
				return nil
			}
			fmt.Fprintf(out, "Test notification sent via %s\n", cfg.Notifications.Transport)
			return nil
		},
	}
}
