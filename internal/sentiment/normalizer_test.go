package sentiment

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var normalizerInputs = []string{
	"I am afraid AI will replace my job next year.",
	"ChatGPT is making writers obsolete, this is sad.",
	"Check https://example.com/path?q=1 NOW!!! 100% real",
	"AI just helped cure a rare disease, amazing! 🎉🎉",
	"   lots   of\twhitespace\n\nhere  ",
	"htt1p://sneaky.example splice",
	"The THE the",
	"",
	"12345 !!! ???",
	"Who is controlling these algorithms? It's biased.",
	"Ünïcödé café naïve résumé",
}

var cleanAlphabet = regexp.MustCompile(`^([a-z]+( [a-z]+)*)?$`)

func TestNormalize_StopwordExample(t *testing.T) {
	got := Normalize("I am afraid AI will replace my job next year.")
	assert.Equal(t, "afraid ai replace job next year", got)

	words := strings.Fields(got)
	for _, stop := range []string{"i", "am", "will", "my"} {
		assert.NotContains(t, words, stop)
	}
	for _, content := range []string{"afraid", "replace", "job", "year"} {
		assert.Contains(t, words, content)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range normalizerInputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_CaseInsensitive(t *testing.T) {
	for _, in := range normalizerInputs {
		assert.Equal(t, Normalize(in), Normalize(strings.ToUpper(in)), "input %q", in)
	}
}

func TestNormalize_OutputAlphabet(t *testing.T) {
	for _, in := range normalizerInputs {
		out := Normalize(in)
		assert.Regexp(t, cleanAlphabet, out, "input %q", in)
	}
}

func TestNormalize_StripsURLs(t *testing.T) {
	assert.Equal(t, "see details", Normalize("See https://news.example.com/a?b=c details"))
	assert.Equal(t, "splice", Normalize("htt1p://sneaky.example splice"))
}

func TestNormalize_EmptyResults(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("12345 !!! ???"))
	assert.Equal(t, "", Normalize("the and of it is"))
}

func TestNormalize_DropsNonASCIILetters(t *testing.T) {
	assert.Equal(t, "ncd caf nave rsum", Normalize("Ünïcödé café naïve résumé"))
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	got := NormalizeAll([]string{"Deepfakes are going to ruin the election.", "", "Optimism!"})
	assert.Equal(t, []string{"deepfakes going ruin election", "", "optimism"}, got)
}

func FuzzNormalize(f *testing.F) {
	for _, in := range normalizerInputs {
		f.Add(in)
	}
	f.Fuzz(func(t *testing.T, in string) {
		out := Normalize(in)
		if !cleanAlphabet.MatchString(out) {
			t.Fatalf("Normalize(%q) = %q contains characters outside [a-z ]", in, out)
		}
		if again := Normalize(out); again != out {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", in, out, again)
		}
	})
}
