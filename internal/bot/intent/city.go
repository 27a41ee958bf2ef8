package intent

import (
	"regexp"
	"strings"
)

// capWord matches a single capitalized word, allowing hyphens, apostrophes
// and periods inside ("Winston-Salem", "St. John's").
const capWord = `[A-Z][a-zA-Z\-.'’]+`

var (
	prepositionCityRe = regexp.MustCompile(`\b(?:in|at)\s+(` + capWord + `(?:\s+` + capWord + `)*)`)
	weatherInCityRe   = regexp.MustCompile(`(?i:weather\s+in)\s+(` + capWord + `(?:\s+` + capWord + `)*)`)
	capRunRe          = regexp.MustCompile(capWord + `(?:\s+` + capWord + `)*`)
)

const trailingPunct = " .?!,;:"

// ExtractCity pulls a candidate city name out of free text using layered
// heuristics, first success wins:
//
//  1. a preposition ("in"/"at") followed by a run of capitalized words;
//  2. "weather in <Capitalized words>" as a secondary anchor;
//  3. the last capitalized-word run anywhere in the text, skipping the run
//     that opens the sentence (locations tend to sit near the end; the
//     leading run is almost always just sentence capitalization).
//
// The heuristic knowingly returns false positives for capitalized non-city
// words mid-sentence and misses lowercase city mentions.
func ExtractCity(text string) (string, bool) {
	if m := prepositionCityRe.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], trailingPunct), true
	}
	if m := weatherInCityRe.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], trailingPunct), true
	}
	runs := capRunRe.FindAllStringIndex(text, -1)
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i][0] == 0 {
			continue
		}
		city := strings.Trim(text[runs[i][0]:runs[i][1]], trailingPunct)
		if city != "" {
			return city, true
		}
	}
	return "", false
}
