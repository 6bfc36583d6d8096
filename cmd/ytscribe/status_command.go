package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/daemon"
	"ytscribe/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:         "status",
		Short:       "Show configuration, dependency, and service health",
		Annotations: skipConfig(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := ctx.diagnosticConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			w := newStatusWriter(cmd.OutOrStdout())
			renderStatus(cmd, w, cfg, path, exists, offline)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that contact remote services")
	return cmd
}

func renderStatus(cmd *cobra.Command, w *statusWriter, cfg *config.Config, path string, exists bool, offline bool) {
	w.section("Bot")
	if exists {
		w.line("Config", statusInfo, path)
	} else {
		w.line("Config", statusWarn, path+" (not found; defaults in use)")
	}
	if err := cfg.Validate(); err != nil {
		w.line("Validation", statusError, err.Error())
	} else {
		w.line("Validation", statusOK, "")
	}
	running, err := daemon.InstanceRunning(cfg.LockPath())
	switch {
	case err != nil:
		w.line("Instance", statusWarn, err.Error())
	case running:
		w.line("Instance", statusOK, "running")
	default:
		w.line("Instance", statusInfo, "not running")
	}
	w.line("Chunk size", statusInfo, fmt.Sprintf("%d characters", cfg.Telegram.ChunkSize))
	w.blank()

	w.section("Dependencies")
	for _, dep := range preflight.CheckSystemDeps(cfg) {
		switch {
		case dep.Available:
			w.line(dep.Name, statusOK, dep.Command)
		case dep.Optional:
			w.line(dep.Name, statusWarn, dep.Detail)
		default:
			w.line(dep.Name, statusError, dep.Detail)
		}
	}
	w.blank()

	w.section("Services")
	if offline {
		w.line("Telegram", statusInfo, "skipped (--offline)")
	} else {
		w.result(preflight.CheckTelegram(cmd.Context(), cfg))
	}
	w.result(preflight.CheckTranscriber(cmd.Context(), cfg, nil))
	w.result(preflight.CheckNotificationsFromConfig(cfg))
	w.result(preflight.CheckHistoryFromConfig(cfg))
	w.blank()

	w.section("Directories")
	w.result(preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	w.result(preflight.CheckDirectoryAccess("Temp directory", cfg.TempDir()))
}
