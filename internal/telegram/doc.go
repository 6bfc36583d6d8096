// Package telegram connects the pipeline to the Telegram Bot API.
//
// Bot long-polls for updates, answers /start and /help with fixed usage text,
// and runs every other text message through the pipeline on its own goroutine.
// Outbound sends and edits share one rate limiter so bursts from concurrent
// transcripts stay under the Bot API flood limits.
package telegram
