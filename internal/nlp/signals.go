package nlp

import (
	"strings"

	"github.com/hyperjump/annai/internal/models"
)

// DetectSignals tests a text fragment against the fixed keyword lists and
// returns the resulting SignalSet. It is applied symmetrically to the live
// query and to each candidate's concatenated searchable text.
func DetectSignals(text string) models.SignalSet {
	folded := Fold(text)
	padded := " " + folded + " "
	tokens := strings.Fields(folded)

	hasToken := func(w string) bool {
		for _, t := range tokens {
			if t == w {
				return true
			}
		}
		return false
	}

	return models.SignalSet{
		HasS1: strings.Contains(folded, "semestre 1") || strings.Contains(padded, " s1 "),
		HasS2: strings.Contains(folded, "semestre 2") || strings.Contains(padded, " s2 "),

		HasVacances: strings.Contains(folded, "vacances"),
		HasWeekend: strings.Contains(folded, "week end") ||
			strings.Contains(folded, "weekend") ||
			strings.Contains(folded, "samedi") ||
			strings.Contains(folded, "dimanche"),
		HasFeries: strings.Contains(folded, "ferie") ||
			strings.Contains(folded, "feries") ||
			strings.Contains(folded, "fete du travail"),

		HasBiblio: strings.Contains(folded, "bibliotheque"),
		HasRestoU: strings.Contains(folded, "restaurant universitaire") ||
			strings.Contains(folded, "resto u"),
		HasCafeteria: strings.Contains(folded, "cafeteria"),
		HasParking:   strings.Contains(folded, "parking"),
		HasVPN:       hasToken("vpn"),
		// "ent" must match as a whole token: as a substring it would fire on
		// almost every French sentence (comment, urgent, ...).
		HasENT: hasToken("ent"),
	}
}
