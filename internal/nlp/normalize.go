// Package nlp provides text normalization, topical signal detection, and
// rule-based entity extraction for French campus queries.
package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwordsFR are French function words and generic verbs removed before
// keyword extraction.
var stopwordsFR = map[string]struct{}{
	"comment": {}, "pourquoi": {}, "quoi": {}, "que": {}, "qui": {},
	"ou": {}, "quand": {}, "combien": {},
	"je": {}, "tu": {}, "il": {}, "elle": {}, "on": {}, "nous": {},
	"vous": {}, "ils": {}, "elles": {},
	"puis": {}, "peux": {}, "puisje": {}, "peuxje": {},
	"obtenir": {}, "faire": {}, "avoir": {}, "contacter": {}, "joindre": {},
	"la": {}, "le": {}, "les": {}, "un": {}, "une": {}, "des": {}, "du": {},
	"de": {}, "d": {}, "a": {}, "au": {}, "aux": {},
	"et": {}, "en": {}, "dans": {}, "sur": {}, "avec": {}, "sans": {},
	"mon": {}, "ma": {}, "mes": {},
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases, strips diacritics and non-alphanumeric characters, and
// collapses whitespace. Deterministic, no side effects.
func Fold(text string) string {
	t := strings.ToLower(text)
	if folded, _, err := transform.String(foldTransformer, t); err == nil {
		t = folded
	}
	var b strings.Builder
	b.Grow(len(t))
	lastSpace := true
	for _, r := range t {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits folded text into words.
func Tokens(text string) []string {
	return strings.Fields(Fold(text))
}

// DefaultKeywordCap bounds how many distinct keywords a query contributes.
const DefaultKeywordCap = 6

// Keywords extracts up to max distinct keywords from text in first-occurrence
// order, skipping stop-words and words shorter than three characters. A max
// of zero or less means DefaultKeywordCap.
func Keywords(text string, max int) []string {
	if max <= 0 {
		max = DefaultKeywordCap
	}
	seen := make(map[string]struct{})
	var kws []string
	for _, w := range Tokens(text) {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopwordsFR[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		kws = append(kws, w)
		if len(kws) >= max {
			break
		}
	}
	return kws
}

// IsStopword reports whether the folded word is in the stop-word list.
func IsStopword(w string) bool {
	_, ok := stopwordsFR[w]
	return ok
}
