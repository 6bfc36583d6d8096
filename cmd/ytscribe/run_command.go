package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/daemon"
	"ytscribe/internal/history"
	"ytscribe/internal/logging"
	"ytscribe/internal/notifications"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/preflight"
	"ytscribe/internal/services/ytdlp"
	"ytscribe/internal/telegram"
	"ytscribe/internal/transcribe"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), ctx, skipPreflight)
		},
	}
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without checking binaries and directories")
	return cmd
}

func runBot(cmdCtx context.Context, ctx *commandContext, skipPreflight bool) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	running, err := daemon.InstanceRunning(cfg.LockPath())
	if err != nil {
		return err
	}
	if running {
		return daemon.ErrAlreadyRunning
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	tr, err := transcribe.New(cfg)
	if err != nil {
		return err
	}

	if !skipPreflight {
		if err := checkReadiness(signalCtx, cfg, tr, logger); err != nil {
			return err
		}
	}

	logger.Info("preparing transcription model",
		logging.String("backend", cfg.Transcription.Backend),
		logging.String("model", tr.Model()))
	if err := transcribe.Warmup(signalCtx, cfg, tr); err != nil {
		return fmt.Errorf("load transcription model: %w", err)
	}

	handler := pipeline.NewHandler(
		pipeline.NewYTDLPFetcher(newDownloader(cfg)),
		tr,
		pipeline.WithLogger(logger),
		pipeline.WithChunkSize(cfg.Telegram.ChunkSize),
	)

	api, err := telegram.NewAPI(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("telegram authenticated", logging.String("bot", api.Self.UserName))

	notifier := notifications.NewService(cfg)
	opts := []telegram.Option{
		telegram.WithLogger(logger),
		telegram.WithRateLimit(cfg.Telegram.SendRatePerSecond, cfg.Telegram.SendBurst),
		telegram.WithPolling(cfg.Telegram.PollTimeout, cfg.Telegram.DropPendingUpdates),
		telegram.WithNotifier(notifier),
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		opts = append(opts, telegram.WithRecorder(store))
	}
	bot := telegram.New(api, handler, opts...)

	d, err := daemon.New(cfg, logger, bot)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := notifier.NotifyStartup(signalCtx, cfg.Transcription.Backend, tr.Model()); err != nil {
		logging.WarnWithContext(logger, "startup notification failed", "notify_failed", logging.Error(err))
	}

	err = d.Run(signalCtx)
	if err != nil && !errors.Is(err, daemon.ErrAlreadyRunning) {
		logger.Error("bot stopped with error", logging.Error(err))
	}
	return err
}

func newDownloader(cfg *config.Config) *ytdlp.Service {
	return ytdlp.NewService(ytdlp.Config{
		Binary:         cfg.Download.Binary,
		AudioFormat:    cfg.Download.AudioFormat,
		AudioQuality:   cfg.Download.AudioQuality,
		FFmpegLocation: cfg.Download.FFmpegDir,
		TempRoot:       cfg.Paths.TempRoot,
	})
}

func checkReadiness(ctx context.Context, cfg *config.Config, tr transcribe.Transcriber, logger *slog.Logger) error {
	failed := preflight.Failed(preflight.RunAll(ctx, cfg, tr))
	if len(failed) == 0 {
		return nil
	}
	for _, r := range failed {
		logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"))
	}
	return fmt.Errorf("preflight: %d check(s) failed; run 'ytscribe status' for details", len(failed))
}
