// Package youtube recognizes YouTube video links inside free-form chat text.
package youtube

import "regexp"

const prefix = `(?:https?://)?(?:www\.)?`

// patterns are tried in order; the first one that matches wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(prefix + `youtube\.com/watch\?v=([\w-]+)`),
	regexp.MustCompile(prefix + `youtu\.be/([\w-]+)`),
	regexp.MustCompile(prefix + `youtube\.com/embed/([\w-]+)`),
	regexp.MustCompile(prefix + `youtube\.com/v/([\w-]+)`),
}

// IsYouTubeURL reports whether text contains a recognizable YouTube video link.
func IsYouTubeURL(text string) bool {
	_, ok := ExtractURL(text)
	return ok
}

// ExtractURL returns the first YouTube link found in text, exactly as written.
func ExtractURL(text string) (string, bool) {
	for _, re := range patterns {
		if match := re.FindString(text); match != "" {
			return match, true
		}
	}
	return "", false
}

// VideoID returns the identifier portion of the first link in text, or "" when
// there is none. The identifier is not checked for well-formedness.
func VideoID(text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
