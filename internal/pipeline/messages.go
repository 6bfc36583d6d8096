package pipeline

import (
	"fmt"

	"ytscribe/internal/textutil"
)

// User-facing replies.
const (
	RejectText              = "Please send me a valid YouTube URL. Use /help for more information."
	DownloadingText         = "🎵 Downloading audio from YouTube..."
	DownloadFailedText      = "❌ Failed to download the YouTube video. Please check the URL and try again."
	TranscriptionFailedText = "❌ Failed to transcribe the audio. Please try again."
	GenericFailureText      = "❌ An error occurred while processing your request. Please try again."
)

// TitleDisplayLimit bounds the title shown while transcribing.
const TitleDisplayLimit = 50

// TranscribingText is the status shown while the transcriber runs.
func TranscribingText(title string) string {
	return fmt.Sprintf("📝 Transcribing audio for: %s...", textutil.Truncate(title, TitleDisplayLimit))
}

// TranscriptText formats chunk i (1-based) of n. A lone chunk carries no part label.
func TranscriptText(i, n int, chunk string) string {
	if n <= 1 {
		return "📄 Transcription:\n\n" + chunk
	}
	return fmt.Sprintf("📄 Transcription (Part %d/%d):\n\n%s", i, n, chunk)
}
