package preflight

import (
	"context"

	"ytscribe/internal/config"
	"ytscribe/internal/transcribe"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the startup checks for the given config. tr may be nil, in
// which case the configured backend is built just for the check.
func RunAll(ctx context.Context, cfg *config.Config, tr transcribe.Transcriber) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// State directory (always checked)
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	// Temp root (when configured)
	if cfg.Paths.TempRoot != "" {
		results = append(results, CheckDirectoryAccess("Temp directory", cfg.Paths.TempRoot))
	}

	for _, status := range CheckSystemDeps(cfg) {
		if status.Optional {
			continue
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: statusDetail(status.Command, status.Detail)})
	}

	results = append(results, CheckTranscriber(ctx, cfg, tr))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func statusDetail(command, detail string) string {
	if detail != "" {
		return detail
	}
	return command
}
