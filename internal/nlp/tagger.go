package nlp

import (
	"strings"

	"github.com/hyperjump/annai/internal/models"
)

// Tagger is the generic named-entity pass. Implementations are best-effort:
// a nil or empty result is always acceptable.
type Tagger interface {
	Tag(text string) []models.Span
}

// LexiconTagger is a small rule-based tagger covering the spans the pipeline
// actually consumes: DATE mentions (weekdays, months, numeric dates) and
// person-like honorific phrases. It stands in for a full statistical tagger,
// which would plug in behind the same interface.
type LexiconTagger struct{}

var weekdaysFR = []string{"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche"}

var monthsFR = []string{
	"janvier", "fevrier", "mars", "avril", "mai", "juin",
	"juillet", "aout", "septembre", "octobre", "novembre", "decembre",
}

var honorificsFR = []string{"monsieur", "madame", "mme", "mr", "dr", "professeur"}

// Tag scans the text for date words and honorific-introduced names.
func (LexiconTagger) Tag(text string) []models.Span {
	var spans []models.Span
	tokens := strings.Fields(Fold(text))

	for i, tok := range tokens {
		if containsWord(weekdaysFR, tok) || containsWord(monthsFR, tok) {
			spans = append(spans, models.Span{Text: tok, Label: "DATE"})
			continue
		}
		if tok == "demain" || tok == "aujourd" {
			spans = append(spans, models.Span{Text: tok, Label: "DATE"})
			continue
		}
		if containsWord(honorificsFR, tok) && i+1 < len(tokens) {
			spans = append(spans, models.Span{Text: tok + " " + tokens[i+1], Label: "PER"})
		}
	}
	return spans
}

func containsWord(list []string, w string) bool {
	for _, c := range list {
		if c == w {
			return true
		}
	}
	return false
}
