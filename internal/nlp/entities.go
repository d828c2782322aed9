package nlp

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/annai/internal/models"
)

// serviceLexicon maps service keywords to canonical hints, first match wins.
// Order matters: more specific services come before generic administration.
var serviceLexicon = []struct {
	keyword string
	hint    string
	// wholeWord forces token-level matching for keys that are too short or
	// too common to match as substrings ("it").
	wholeWord bool
}{
	{"scolarite", "scolarite", false},
	{"helpdesk", "helpdesk", false},
	{"informatique", "informatique", false},
	{"it", "it", true},
	{"comptabilite", "comptabilite", false},
	{"administration", "administration", false},
	{"bibliotheque", "bibliotheque", false},
}

// programAliases maps folded program phrases to canonical program codes.
var programAliases = map[string]string{
	"bachelor 1": "B1",
	"bachelor1":  "B1",
	"b1":         "B1",

	"bachelor 2": "B2",
	"bachelor2":  "B2",
	"b2":         "B2",

	"bachelor 3 developpement":     "B3-DEV",
	"bachelor 3 dev":               "B3-DEV",
	"b3 dev":                       "B3-DEV",
	"b3 developpement informatique": "B3-DEV",

	"bachelor 3 cybersecurite": "B3-CYBER",
	"b3 cyber":                 "B3-CYBER",
	"b3 cybersecurite":         "B3-CYBER",

	"bachelor 3 data":         "B3-DATA",
	"bachelor 3 data science": "B3-DATA",
	"b3 data":                 "B3-DATA",

	"master 1":                            "M1-IA",
	"master 1 ia":                         "M1-IA",
	"m1 ia":                               "M1-IA",
	"master 1 intelligence artificielle":  "M1-IA",
	"1ere annee de master ia":             "M1-IA",
	"data science 1e annee":               "M1-IA",
	"data science 1ere annee":             "M1-IA",

	"master 2":                           "M2-IA",
	"master 2 ia":                        "M2-IA",
	"m2 ia":                              "M2-IA",
	"master 2 intelligence artificielle": "M2-IA",
	"2eme annee de master ia":            "M2-IA",
	"data science 2e annee":              "M2-IA",
	"data science 2eme annee":            "M2-IA",
}

// aliasKeysByLength holds program alias keys longest-first so that the most
// specific phrase wins when several match.
var aliasKeysByLength = func() []string {
	keys := make([]string, 0, len(programAliases))
	for k := range programAliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// formationRe captures "<track> ... <ordinal year>" phrases on folded text,
// e.g. "data science 2eme annee".
var formationRe = regexp.MustCompile(`(data science|cybersecurite|developpement).{0,15}[0-9](?:e|eme|ere)\s*annee`)

// subjectVocabulary is the fixed subject lookup, checked in order.
var subjectVocabulary = []struct {
	keyword string
	subject string
}{
	{"machine learning", "machine learning"},
	{"cybersecurite", "cybersécurité"},
}

// relativeDateLexicon lists the relative date phrases merged with tagger DATE
// spans.
var relativeDateLexicon = []string{"lundi prochain", "semaine prochaine", "demain"}

// Extractor produces EntityBundles by layering rule-based lookups atop a
// generic named-entity pass. Every sub-extraction is independent and
// best-effort.
type Extractor struct {
	tagger Tagger
}

// NewExtractor creates an Extractor. A nil tagger disables the generic pass.
func NewExtractor(tagger Tagger) *Extractor {
	return &Extractor{tagger: tagger}
}

// Extract builds the EntityBundle for one utterance.
func (e *Extractor) Extract(text string) models.EntityBundle {
	folded := Fold(text)
	bundle := models.EntityBundle{}

	if e.tagger != nil {
		bundle.Spans = e.tagger.Tag(text)
	}

	bundle.ServiceHint = serviceHint(folded)
	bundle.Formation, bundle.ProgramCode = program(folded)
	bundle.Subject = subject(folded)
	bundle.DatePhrases = datePhrases(folded, bundle.Spans)

	return bundle
}

func serviceHint(folded string) string {
	padded := " " + folded + " "
	for _, entry := range serviceLexicon {
		if entry.wholeWord {
			if strings.Contains(padded, " "+entry.keyword+" ") {
				return entry.hint
			}
			continue
		}
		if strings.Contains(folded, entry.keyword) {
			return entry.hint
		}
	}
	return ""
}

// program returns the raw formation phrase and its canonical code. The phrase
// comes from the "<track> <ordinal year>" regex; the code is resolved through
// the alias table, falling back to the longest alias phrase present anywhere
// in the text (covers direct mentions like "b3 cyber").
func program(folded string) (formation, code string) {
	if m := formationRe.FindString(folded); m != "" {
		formation = strings.Join(strings.Fields(m), " ")
		if c, ok := programAliases[formation]; ok {
			return formation, c
		}
	}
	padded := " " + folded + " "
	for _, key := range aliasKeysByLength {
		if strings.Contains(padded, " "+key+" ") {
			return formation, programAliases[key]
		}
	}
	return formation, ""
}

func subject(folded string) string {
	for _, entry := range subjectVocabulary {
		if strings.Contains(folded, entry.keyword) {
			return entry.subject
		}
	}
	return ""
}

func datePhrases(folded string, spans []models.Span) []string {
	var dates []string
	seen := make(map[string]struct{})
	add := func(d string) {
		if _, dup := seen[d]; dup {
			return
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	for _, s := range spans {
		if s.Label == "DATE" {
			add(s.Text)
		}
	}
	for _, kw := range relativeDateLexicon {
		if strings.Contains(folded, kw) {
			add(kw)
		}
	}
	return dates
}
