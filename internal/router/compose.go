package router

import (
	"fmt"
	"strings"

	"github.com/hyperjump/annai/internal/models"
)

// Store-tier confidences. The external index carries its own relevance score;
// these apply when a domain is answered from the store alone.
const (
	faqConfidence       = 0.70
	procedureConfidence = 0.65
	contactConfidence   = 0.60
	timetableConfidence = 0.60
)

// Fallback confidences: searches ran and came back empty vs. intent
// resolution itself produced nothing usable.
const (
	fallbackConfidence     = 0.20
	unresolvedConfidence   = 0.10
	smalltalkConfidence    = 1.0
	kbConfidenceCeiling    = 0.95
	kbConfidenceBase       = 0.55
	kbConfidenceScoreScale = 10.0
)

// FallbackAnswer is the clarification prompt when no domain qualifies.
const FallbackAnswer = "Je n'ai pas trouvé une réponse certaine.\n" +
	"Peux-tu préciser le sujet, ta formation/promo ou la date concernée ?\n" +
	"Tu peux aussi consulter le portail étudiant ou contacter le service scolarité."

// composed is one rendered domain result before decision assembly.
type composed struct {
	Answer  string
	Sources []models.Source
}

func composeFAQ(f *models.FAQ) composed {
	return composed{
		Answer:  f.Answer,
		Sources: []models.Source{{Type: "faq", ID: f.ID, Title: f.Question}},
	}
}

func composeProcedure(p *models.Procedure) composed {
	answer := strings.TrimSpace(p.Title + "\n\n" + p.Summary)
	if len(p.Steps) > 0 {
		answer += "\n\n" + strings.Join(numbered(p.Steps), "\n")
	}
	return composed{
		Answer:  answer,
		Sources: []models.Source{{Type: "procedure", ID: p.ID, Title: p.Title}},
	}
}

func numbered(steps []string) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = fmt.Sprintf("%d. %s", i+1, s)
	}
	return out
}

func composeContact(c *models.Contact) composed {
	service := c.SubCategory
	if service == "" {
		service = c.Category
	}
	lines := []string{"Service : " + service}
	if c.FullName != "" {
		lines = append(lines, "Contact : "+c.FullName)
	}
	if c.Email != "" {
		lines = append(lines, "Email : "+c.Email)
	}
	if c.Phone != "" {
		lines = append(lines, "Téléphone : "+c.Phone)
	}
	if loc := location(c); loc != "" {
		lines = append(lines, "Lieu : "+loc)
	}
	if c.Hours != "" {
		lines = append(lines, "Horaires : "+c.Hours)
	}
	title := c.FullName
	if title == "" {
		title = service
	}
	return composed{
		Answer:  strings.Join(lines, "\n"),
		Sources: []models.Source{{Type: "contacts", ID: c.ID, Title: title}},
	}
}

func location(c *models.Contact) string {
	switch {
	case c.Building != "" && c.Office != "":
		return c.Building + ", " + c.Office
	case c.Building != "":
		return c.Building
	default:
		return c.Office
	}
}

func composeSlots(slots []*models.TimetableSlot) composed {
	lines := make([]string, 0, len(slots)+1)
	lines = append(lines, "Voici les prochains créneaux :")
	sources := make([]models.Source, 0, len(slots))
	for _, s := range slots {
		lines = append(lines, "- "+models.FormatSlot(s))
		sources = append(sources, models.Source{Type: "timetable", ID: s.ID, Title: s.SubjectName})
	}
	return composed{
		Answer:  strings.Join(lines, "\n"),
		Sources: sources,
	}
}
