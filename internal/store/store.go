// Package store defines the persistence interface for the knowledge base and
// the chat-event log.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/annai/internal/models"
)

// ErrNotFound is returned when a single-record lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// ContactFilter narrows a contact search. Zero values are ignored.
type ContactFilter struct {
	// SubCategoryLike restricts to contacts whose sub-category contains the
	// given fragment (e.g. "scolar").
	SubCategoryLike string
	// Category restricts to an exact category (e.g. "Responsables pédagogiques").
	Category string
	// ProgramsLikeAny keeps contacts whose programs field matches any of the
	// fragments.
	ProgramsLikeAny []string
}

// SlotFilter narrows a timetable search. Zero values are ignored.
type SlotFilter struct {
	Program         string
	GroupName       string
	ProgramLike     string
	SubjectLikeAny  []string
	SubjectCodeLike string
}

// ChatEvent is one logged routing decision. Exactly one row per utterance.
type ChatEvent struct {
	ID        string
	UserHash  string
	Channel   string
	Message   string
	Language  string
	Intent    string
	Entities  *models.EntityBundle
	Response  string
	Confidence float64
	Resolved  bool
	LatencyMS int64
	CreatedAt time.Time
}

// Feedback is a user rating attached to a chat event.
type Feedback struct {
	ID              int64
	ChatEventID     string
	Rating          int
	Comment         string
	CorrectedAnswer string
	CreatedAt       time.Time
}

// Counts holds per-domain record counts.
type Counts struct {
	FAQ        int64
	Procedures int64
	Contacts   int64
	Slots      int64
	Events     int64
}

// Store is the knowledge store read/write API. Search methods implement the
// keyword-OR-substring predicate and return results unordered by relevance;
// relevance ordering is the reranker's job.
type Store interface {
	// FAQ
	InsertFAQ(ctx context.Context, f *models.FAQ) error
	FAQByExactQuestion(ctx context.Context, question string) (*models.FAQ, error)
	FAQByKeywords(ctx context.Context, keywords []string, categoryID string, limit int) ([]*models.FAQ, error)

	// Procedures
	InsertProcedure(ctx context.Context, p *models.Procedure) error
	ProceduresByKeywords(ctx context.Context, keywords []string, limit int) ([]*models.Procedure, error)

	// Contacts
	InsertContact(ctx context.Context, c *models.Contact) error
	ContactsByKeywords(ctx context.Context, keywords []string, filter ContactFilter, limit int) ([]*models.Contact, error)
	FirstContactByHint(ctx context.Context, hint string) (*models.Contact, error)

	// Timetable
	InsertSlot(ctx context.Context, s *models.TimetableSlot) error
	SlotsFiltered(ctx context.Context, filter SlotFilter, limit int) ([]*models.TimetableSlot, error)

	// Event log and feedback
	InsertChatEvent(ctx context.Context, e *ChatEvent) error
	InsertFeedback(ctx context.Context, f *Feedback) error

	// Maintenance
	Counts(ctx context.Context) (Counts, error)
	AllRecords(ctx context.Context) ([]models.KnowledgeRecord, error)
	ClearDomain(ctx context.Context, domain models.Domain) error

	Close() error
}
