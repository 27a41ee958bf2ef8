package intent

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ai-rag-weather/server/internal/bot/model"
)

// weatherHints is the fixed keyword set a query is fuzzily matched against.
var weatherHints = []string{
	"weather", "temperature", "temp", "forecast", "rain",
	"humidity", "wind", "snow", "sun", "cloud", "visibility",
}

// fuzzyThreshold is the minimum normalised similarity for a token to count
// as a weather hint. 0.85 tolerates one edit in words of seven letters or
// more, so "wheather" still routes to the weather branch.
const fuzzyThreshold = 0.85

// weatherPhraseRe is the fallback for phrasings with no recognisable
// keyword token, e.g. "whats the weather". Tolerates straight and curly
// possessive apostrophes; applied to lowercased input.
var weatherPhraseRe = regexp.MustCompile(`\b(what('?s)?|how)( is|s|'s|’s)? the (weather|temperature)\b`)

// Classify decides whether a query asks about the weather or about the
// ingested documents. It is pure and always returns a value.
func Classify(text string) model.Intent {
	t := strings.ToLower(text)
	if fuzzyContains(t, weatherHints, fuzzyThreshold) {
		return model.IntentWeather
	}
	if weatherPhraseRe.MatchString(t) {
		return model.IntentWeather
	}
	return model.IntentDocQA
}

// fuzzyContains reports whether any whitespace token of text matches one of
// the keywords with similarity >= threshold.
func fuzzyContains(text string, keywords []string, threshold float64) bool {
	for _, word := range strings.Fields(text) {
		for _, kw := range keywords {
			if similarity(word, kw) >= threshold {
				return true
			}
		}
	}
	return false
}

// similarity is a normalised edit-distance ratio in [0,1]: identical strings
// score 1, fully distinct strings score 0.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
