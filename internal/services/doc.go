// Package services defines shared utilities consumed by the pipeline and the
// external integrations (yt-dlp, WhisperX, OpenAI, Telegram).
//
// Key responsibilities:
//   - Context helpers that stamp chat IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so the pipeline can tell a
//     failed download from a failed transcription without reading strings.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across the bot.
package services
