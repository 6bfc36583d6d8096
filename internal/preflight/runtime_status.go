package preflight

import (
	"context"
	"fmt"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/transcribe"
)

// CheckTranscriber evaluates the configured speech-to-text backend. When tr is
// nil the backend is built from cfg.
func CheckTranscriber(ctx context.Context, cfg *config.Config, tr transcribe.Transcriber) Result {
	const name = "Transcription"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if tr == nil {
		built, err := transcribe.New(cfg)
		if err != nil {
			return Result{Name: name, Detail: err.Error()}
		}
		tr = built
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	health := tr.HealthCheck(checkCtx)
	label := fmt.Sprintf("%s (%s)", cfg.Transcription.Backend, tr.Model())
	if !health.Ready {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %s", label, health.Detail)}
	}
	return Result{Name: name, Passed: true, Detail: label}
}

// CheckNotificationsFromConfig reports whether operator alerts are configured.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if cfg.Notifications.NtfyTopic == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Notifications.NtfyTopic}
}

// CheckHistoryFromConfig reports the request history database location.
func CheckHistoryFromConfig(cfg *config.Config) Result {
	const name = "History"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.History.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.HistoryPath()}
}
