package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"ytscribe/internal/services"
)

func outputTemplate(args []string) string {
	if i := slices.Index(args, "--output"); i >= 0 && i+1 < len(args) {
		return args[i+1]
	}
	return ""
}

// fakeYTDLP answers the title probe and writes fileName into the download dir.
func fakeYTDLP(t *testing.T, title, fileName string, calls *[][]string) func(context.Context, string, ...string) ([]byte, error) {
	t.Helper()
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		*calls = append(*calls, args)
		if slices.Contains(args, "--skip-download") {
			return []byte(title + "\n"), nil
		}
		if fileName != "" {
			dir := filepath.Dir(outputTemplate(args))
			if err := os.WriteFile(filepath.Join(dir, fileName), []byte("audio"), 0o644); err != nil {
				t.Fatalf("write fake download: %v", err)
			}
		}
		return nil, nil
	}
}

func TestFetchAudioDownloadsIntoUniqueDir(t *testing.T) {
	root := t.TempDir()
	svc := NewService(Config{TempRoot: root})
	var calls [][]string
	svc.WithCommandRunner(fakeYTDLP(t, "Never Gonna Give You Up", "Never Gonna Give You Up.mp3", &calls))

	url := "https://youtu.be/dQw4w9WgXcQ"
	first, err := svc.FetchAudio(context.Background(), url)
	if err != nil {
		t.Fatalf("FetchAudio returned error: %v", err)
	}
	second, err := svc.FetchAudio(context.Background(), url)
	if err != nil {
		t.Fatalf("FetchAudio returned error: %v", err)
	}
	if first.Dir == second.Dir {
		t.Fatalf("expected unique dirs, both were %q", first.Dir)
	}
	if first.Title != "Never Gonna Give You Up" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if filepath.Dir(first.Path) != first.Dir || !strings.HasSuffix(first.Path, ".mp3") {
		t.Fatalf("unexpected path %q", first.Path)
	}
	if !strings.HasPrefix(first.Dir, root) {
		t.Fatalf("expected dir under temp root, got %q", first.Dir)
	}

	download := calls[1]
	for _, want := range []string{"bestaudio/best", "--extract-audio", "mp3", "192K", url} {
		if !slices.Contains(download, want) {
			t.Fatalf("download args missing %q: %v", want, download)
		}
	}
	if download[len(download)-1] != url {
		t.Fatalf("expected url last, got %v", download)
	}

	for _, a := range []Audio{first, second} {
		if err := a.Cleanup(); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
		if err := a.Cleanup(); err != nil {
			t.Fatalf("second Cleanup should be a no-op: %v", err)
		}
		if _, err := os.Stat(a.Dir); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s removed", a.Dir)
		}
	}
}

func TestFetchAudioUnknownTitle(t *testing.T) {
	svc := NewService(Config{TempRoot: t.TempDir()})
	var calls [][]string
	svc.WithCommandRunner(fakeYTDLP(t, "NA", "NA.mp3", &calls))
	audio, err := svc.FetchAudio(context.Background(), "youtu.be/x")
	if err != nil {
		t.Fatalf("FetchAudio returned error: %v", err)
	}
	defer audio.Cleanup()
	if audio.Title != UnknownTitle {
		t.Fatalf("expected fallback title, got %q", audio.Title)
	}
}

func TestFetchAudioFailuresLeaveNothingBehind(t *testing.T) {
	tests := []struct {
		name   string
		runner func(context.Context, string, ...string) ([]byte, error)
	}{
		{"probe fails", func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("ERROR: Video unavailable")
		}},
		{"download fails", func(_ context.Context, _ string, args ...string) ([]byte, error) {
			if slices.Contains(args, "--skip-download") {
				return []byte("title"), nil
			}
			return nil, errors.New("HTTP Error 403")
		}},
		{"no output file", func(_ context.Context, _ string, args ...string) ([]byte, error) {
			if slices.Contains(args, "--skip-download") {
				return []byte("title"), nil
			}
			dir := filepath.Dir(outputTemplate(args))
			return nil, os.WriteFile(filepath.Join(dir, "title.webm"), nil, 0o644)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			svc := NewService(Config{TempRoot: root})
			svc.WithCommandRunner(tt.runner)

			audio, err := svc.FetchAudio(context.Background(), "https://youtu.be/x")
			if !errors.Is(err, services.ErrDownload) {
				t.Fatalf("expected ErrDownload, got %v", err)
			}
			if audio != (Audio{}) {
				t.Fatalf("expected zero Audio, got %+v", audio)
			}
			entries, err := os.ReadDir(root)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Fatalf("expected temp root empty, found %d entries", len(entries))
			}
		})
	}
}

func TestCustomFormatAndFFmpegLocation(t *testing.T) {
	svc := NewService(Config{TempRoot: t.TempDir(), AudioFormat: "m4a", AudioQuality: "128", FFmpegLocation: "/opt/ffmpeg"})
	var calls [][]string
	svc.WithCommandRunner(fakeYTDLP(t, "clip", "clip.m4a", &calls))
	audio, err := svc.FetchAudio(context.Background(), "youtu.be/x")
	if err != nil {
		t.Fatalf("FetchAudio returned error: %v", err)
	}
	defer audio.Cleanup()
	args := calls[1]
	if !slices.Contains(args, "128K") || !slices.Contains(args, "/opt/ffmpeg") {
		t.Fatalf("unexpected args %v", args)
	}
	if filepath.Ext(audio.Path) != ".m4a" {
		t.Fatalf("unexpected path %q", audio.Path)
	}
}

func TestVersionAndHealth(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "yt-dlp" || len(args) != 1 || args[0] != "--version" {
			t.Fatalf("unexpected invocation %s %v", name, args)
		}
		return []byte("2025.09.26\n"), nil
	})
	version, err := svc.Version(context.Background())
	if err != nil || version != "2025.09.26" {
		t.Fatalf("Version = %q, %v", version, err)
	}

	svc.lookPath = func(string) (string, error) { return "", errors.New("missing") }
	if h := svc.HealthCheck(context.Background()); h.Ready {
		t.Fatalf("expected unhealthy: %+v", h)
	}
}
