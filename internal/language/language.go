// Package language normalizes the optional transcription language hint.
//
// Whisper backends expect ISO 639-1 codes. Operators tend to write whatever is
// handy ("English", "eng", "en-US"), so the hint is resolved through a small
// table of common names and then golang.org/x/text/language for everything else.
package language

import (
	"fmt"
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var words = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
	"ukrainian":  "uk",
	"turkish":    "tr",
}

// Normalize converts a language hint into an ISO 639-1 code. Blank input and
// "auto" mean auto-detection and return "".
func Normalize(hint string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(hint))
	if value == "" || value == "auto" {
		return "", nil
	}
	if code, ok := words[value]; ok {
		return code, nil
	}
	tag, err := xlang.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", hint, err)
	}
	base, confidence := tag.Base()
	if confidence == xlang.No || base.String() == "und" {
		return "", fmt.Errorf("unrecognized language %q", hint)
	}
	code := base.String()
	if len(code) != 2 {
		return "", fmt.Errorf("language %q has no two-letter code", hint)
	}
	return code, nil
}

// DisplayName returns the English name for a code, or "auto-detect" when blank.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "auto-detect"
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
