package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"ytscribe/internal/config"
	"ytscribe/internal/deps"
	"ytscribe/internal/services"
	"ytscribe/internal/telegram"
)

// CheckTelegram verifies the bot token by calling getMe once.
func CheckTelegram(ctx context.Context, cfg *config.Config) Result {
	const name = "Telegram"

	if cfg == nil || cfg.Telegram.Token == "" {
		return Result{Name: name, Detail: "token missing"}
	}

	type outcome struct {
		username string
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		api, err := telegram.NewAPI(cfg, nil)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		done <- outcome{username: api.Self.UserName}
	}()

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	select {
	case <-checkCtx.Done():
		return Result{Name: name, Detail: summarizeError(checkCtx.Err())}
	case res := <-done:
		if res.err != nil {
			return Result{Name: name, Detail: summarizeError(res.err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("@%s authenticated", res.username)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the configured pipeline runs.
// Both the bot startup and the CLI status command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Download.Binary,
			Description: "Required for audio download",
		},
	}
	if cfg.Transcription.Backend == config.BackendWhisperX {
		requirements = append(requirements, deps.Requirement{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX-driven transcription",
		})
	}
	statuses := deps.CheckBinaries(requirements)
	return append(statuses, deps.CheckFFmpeg(cfg.Download.FFmpegDir))
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) && svcErr.Err != nil {
		return fmt.Sprintf("%s: %v", svcErr.Message, svcErr.Err)
	}
	return err.Error()
}
