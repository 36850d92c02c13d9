package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/impactwatch/internal/models"
)

const (
	POSITIVE_THRESHOLD = 0.20
	NEGATIVE_THRESHOLD = -0.20
)

var (
	analyzer        = govader.NewSentimentIntensityAnalyzer()
	markdownLink    = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	plainURLPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = markdownLink.ReplaceAllString(input, "$1") // keep only the link text
	return plainURLPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup so
// VADER sees the words, not the syntax.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		// renderers carry per-document state, and smartypants would turn
		// "don't" into an entity VADER cannot match
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: blackfriday.UseXHTML,
		})))
	plain := html.UnescapeString(htmlTagPattern.ReplaceAllString(string(output), " "))
	return strings.Join(strings.Fields(plain), " ")
}

// Polarity scores raw text with the VADER lexicon. It is independent of the
// trained classifiers and does not go through Normalize: VADER relies on
// casing and punctuation.
func Polarity(text string) models.PolarityResult {
	score := analyzer.PolarityScores(ConvertMarkdownToText(text)).Compound

	var label string
	if score >= POSITIVE_THRESHOLD {
		label = "positive"
	} else if score <= NEGATIVE_THRESHOLD {
		label = "negative"
	} else {
		label = "neutral"
	}

	return models.PolarityResult{
		Text:     text,
		Compound: score,
		Label:    label,
	}
}
