// Package escalate implements the per-utterance escalation state machine and
// the hand-off personalization that goes with it.
package escalate

import (
	"strings"

	"github.com/hyperjump/annai/internal/classifier"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
)

// State of the machine. Stateless across utterances: every evaluation starts
// from StateNormal.
type State int

const (
	StateNormal State = iota
	StateEscalated
)

// EscalationConfidence is the fixed confidence attached to an escalation
// decision.
const EscalationConfidence = 0.95

// urgencyThreshold is the minimum urgency score required to escalate.
const urgencyThreshold = 0.4

// factualGuards are phrasings of pure factual timetable or "who teaches"
// questions. A frustrated-sounding but factual query must not escalate.
var factualGuards = []string{
	"emploi du temps",
	"quand sont les examens",
	"quand est le cours",
	"quand a lieu",
	"qui enseigne",
	"quel prof",
	"quelle salle",
}

// Input carries the four escalation preconditions' raw material.
type Input struct {
	Text      string
	Sentiment models.SentimentResult
}

// Evaluate applies the transition rule. StateEscalated requires ALL of:
// negative sentiment, urgency above threshold, a complaint-lexicon hit, and
// the query not being a pure factual timetable/"who teaches" question.
func Evaluate(in Input) State {
	if in.Sentiment.Label != models.SentimentFrustration && in.Sentiment.Label != models.SentimentUrgent {
		return StateNormal
	}
	if in.Sentiment.Urgency < urgencyThreshold {
		return StateNormal
	}
	if !classifier.MatchesComplaintLexicon(in.Text) {
		return StateNormal
	}
	if looksFactual(in.Text) {
		return StateNormal
	}
	return StateEscalated
}

func looksFactual(text string) bool {
	folded := nlp.Fold(text)
	for _, g := range factualGuards {
		if strings.Contains(folded, g) {
			return true
		}
	}
	return false
}

// DisplayName resolves who the hand-off names, best first: full name, then
// sub-category, then category, then a generic label.
func DisplayName(c *models.Contact) string {
	switch {
	case c == nil:
		return "notre équipe"
	case c.FullName != "":
		return c.FullName
	case c.SubCategory != "":
		return c.SubCategory
	case c.Category != "":
		return c.Category
	default:
		return "notre équipe"
	}
}

// RoleLabel resolves the role line of the hand-off, best first: explicit
// role, then sub-category based, then category based, then generic.
func RoleLabel(c *models.Contact) string {
	switch {
	case c == nil:
		return "Responsable"
	case c.Role != "":
		return c.Role
	case c.SubCategory != "":
		return "Responsable de la " + c.SubCategory
	case c.Category != "":
		return "Responsable " + c.Category
	default:
		return "Responsable"
	}
}

// missingField is rendered whenever a coordinate is absent: a hand-off never
// silently drops a line.
const missingField = "non renseigné"

func orMissing(s string) string {
	if s == "" {
		return missingField
	}
	return s
}

// Handoff renders the escalation answer. A nil contact yields the generic
// hand-off message.
func Handoff(c *models.Contact) string {
	var b strings.Builder
	b.WriteString("Je comprends votre frustration et je suis désolé pour la gêne occasionnée. ")
	b.WriteString("Votre demande est transmise en priorité.\n\n")

	if c == nil {
		b.WriteString("Un membre de notre équipe va vous recontacter au plus vite. ")
		b.WriteString("Vous pouvez aussi vous présenter directement à l'accueil du campus.")
		return b.String()
	}

	b.WriteString("Contact : " + DisplayName(c) + "\n")
	b.WriteString("Fonction : " + RoleLabel(c) + "\n")
	b.WriteString("Email : " + orMissing(c.Email) + "\n")
	b.WriteString("Téléphone : " + orMissing(c.Phone) + "\n")
	b.WriteString("Horaires : " + orMissing(c.Hours))
	return b.String()
}
