package pipeline

import "ytscribe/internal/textutil"

// Chunk splits a transcript into pieces of at most size characters. The cut is
// a raw character count and may fall mid-word.
func Chunk(transcript string, size int) []string {
	return textutil.Chunk(transcript, size)
}
