package textutil_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"ytscribe/internal/textutil"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 50, "short"},
		{"abcdef", 3, "abc"},
		{"ünïcödé", 4, "ünïc"},
		{"🎵🎵🎵", 2, "🎵🎵"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := textutil.Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestChunkExactMultiplesAndRemainder(t *testing.T) {
	const size = 4096
	for _, k := range []int{1, 2, 3} {
		for _, r := range []int{0, 1, 904} {
			total := size*k + r
			text := strings.Repeat("x", total)
			chunks := textutil.Chunk(text, size)

			want := k
			if r > 0 {
				want = k + 1
			}
			if len(chunks) != want {
				t.Fatalf("len=%d: got %d chunks, want %d", total, len(chunks), want)
			}
			for i := 0; i < k; i++ {
				if len(chunks[i]) != size {
					t.Fatalf("chunk %d has length %d", i, len(chunks[i]))
				}
			}
			if r > 0 && len(chunks[k]) != r {
				t.Fatalf("last chunk has length %d, want %d", len(chunks[k]), r)
			}
			if strings.Join(chunks, "") != text {
				t.Fatal("chunks do not reassemble the input")
			}
		}
	}
}

func TestChunkShortInputIsSingleChunk(t *testing.T) {
	chunks := textutil.Chunk("hello", 4096)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
	if chunks := textutil.Chunk("", 4096); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %q", chunks)
	}
}

func TestChunkCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 10)
	chunks := textutil.Chunk(text, 4)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	for i, c := range chunks[:2] {
		if n := utf8.RuneCountInString(c); n != 4 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
}

func TestJoinFields(t *testing.T) {
	got := textutil.JoinFields([]string{" Hello", "", "  world. ", "\n"})
	if got != "Hello world." {
		t.Fatalf("JoinFields = %q", got)
	}
}
