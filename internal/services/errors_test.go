package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ytscribe/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDownload, "ytdlp", "download", "yt-dlp exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"download failed", "ytdlp", "download", "yt-dlp exited", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestDetailsSurvivesOuterWrapping(t *testing.T) {
	inner := services.Wrap(services.ErrTranscription, "whisperx", "transcribe", "empty transcript", nil)
	outer := fmt.Errorf("handler: %w", inner)

	details := services.Details(outer)
	if details.Stage != "whisperx" || details.Operation != "transcribe" {
		t.Fatalf("unexpected details: %+v", details)
	}
	if details.Message != "empty transcript" {
		t.Fatalf("unexpected message: %q", details.Message)
	}

	plain := services.Details(errors.New("plain"))
	if plain.Message != "plain" || plain.Marker != nil {
		t.Fatalf("unexpected details for plain error: %+v", plain)
	}
}
