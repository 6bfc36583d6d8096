// Package textutil provides small rune-aware string helpers shared by the
// pipeline and the transcription backends.
package textutil
