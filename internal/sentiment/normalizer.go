package sentiment

import (
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`http\S+`)
	nonAlphaPattern = regexp.MustCompile(`[^a-zA-Z\s]`)
)

// Normalize turns raw text into the cleaned form both the trainer and the
// inference service feed to the vectorizer: lowercase, URLs removed, only
// ASCII letters kept, stopwords dropped, tokens joined by single spaces.
//
// Any input is accepted. The result may be empty.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = nonAlphaPattern.ReplaceAllString(text, "")
	// dropping characters can splice a new URL run ("htt1p://x" -> "httpx")
	text = urlPattern.ReplaceAllString(text, "")

	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if !IsStopword(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeAll applies Normalize to every text, preserving order.
func NormalizeAll(texts []string) []string {
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = Normalize(t)
	}
	return cleaned
}
