package classifier

import (
	"strings"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
)

// complaintLexicon is the fixed list of complaint markers, matched on folded
// text. Shared with the escalation pre-check.
var complaintLexicon = []string{
	"inadmissible",
	"inacceptable",
	"scandaleux",
	"honteux",
	"toujours pas",
	"aucune reponse",
	"personne ne repond",
	"personne ne me repond",
	"troisieme fois",
	"j attends",
	"ras le bol",
	"marre",
	"plainte",
	"reclamation",
}

// MatchesComplaintLexicon reports whether text contains a complaint marker.
func MatchesComplaintLexicon(text string) bool {
	folded := nlp.Fold(text)
	for _, kw := range complaintLexicon {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// Fixed urgency constants used when no probability vector exists.
const (
	urgencyHigh = 0.8
	urgencyLow  = 0.2
	// urgencyComplaint is the rule-only urgency when the artifact is absent
	// but the complaint lexicon fires.
	urgencyComplaint = 0.5
)

// SentimentModel layers the urgency computation over a sentiment artifact.
type SentimentModel struct {
	model *Model
}

// NewSentimentModel wraps a loaded (or absent) sentiment classifier.
func NewSentimentModel(m *Model) *SentimentModel {
	return &SentimentModel{model: m}
}

// Available reports whether the underlying artifact is loaded.
func (s *SentimentModel) Available() bool {
	return s != nil && s.model.Available()
}

// Predict returns the sentiment label and urgency score for text.
//
// With a probabilistic artifact: urgency = p(urgent) + 0.5*p(frustration).
// With a margin-only artifact: a fixed constant per label. With no artifact
// at all, a rule-only fallback keeps escalation functional: the complaint
// lexicon maps to frustration at medium urgency.
func (s *SentimentModel) Predict(text string) models.SentimentResult {
	if !s.Available() {
		if MatchesComplaintLexicon(text) {
			return models.SentimentResult{Label: models.SentimentFrustration, Urgency: urgencyComplaint}
		}
		return models.SentimentResult{Label: models.SentimentNeutral, Urgency: urgencyLow}
	}

	res, _ := s.model.Classify(text)
	label := res.Label

	if proba := s.model.Probabilities(text); proba != nil {
		var pUrgent, pFrustration float64
		for i, l := range s.model.Labels() {
			switch l {
			case models.SentimentUrgent:
				pUrgent = proba[i]
			case models.SentimentFrustration:
				pFrustration = proba[i]
			}
		}
		return models.SentimentResult{Label: label, Urgency: clamp01(pUrgent + 0.5*pFrustration)}
	}

	urgency := urgencyLow
	if label == models.SentimentUrgent || label == models.SentimentFrustration {
		urgency = urgencyHigh
	}
	return models.SentimentResult{Label: label, Urgency: urgency}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
