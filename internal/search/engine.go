package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/ranking"
	"github.com/hyperjump/annai/internal/store"
)

// Limits bounds the result sizes per domain.
type Limits struct {
	FAQ        int `yaml:"faq"`
	Procedures int `yaml:"procedures"`
	Contacts   int `yaml:"contacts"`
	Slots      int `yaml:"slots"`
	KB         int `yaml:"kb"`
}

// ApplyDefaults fills zero values.
func (l *Limits) ApplyDefaults() {
	if l.FAQ == 0 {
		l.FAQ = 3
	}
	if l.Procedures == 0 {
		l.Procedures = 3
	}
	if l.Contacts == 0 {
		l.Contacts = 3
	}
	if l.Slots == 0 {
		l.Slots = 5
	}
	if l.KB == 0 {
		l.KB = 5
	}
}

// minOverFetch is the floor on candidate over-fetch before reranking.
const minOverFetch = 15

// Engine runs the per-domain search tiers.
type Engine struct {
	store    store.Store
	kb       KBIndex
	reranker *ranking.Reranker
	limits   Limits
	logger   *zap.Logger
}

// NewEngine creates a search engine. kb may be nil when no external index is
// configured.
func NewEngine(st store.Store, kb KBIndex, reranker *ranking.Reranker, limits Limits, logger *zap.Logger) *Engine {
	limits.ApplyDefaults()
	return &Engine{
		store:    st,
		kb:       kb,
		reranker: reranker,
		limits:   limits,
		logger:   logger,
	}
}

// KBSearch queries the external full-text index. It never fails: an absent
// index or a search error yields zero hits, and the caller falls through to
// the store tiers.
func (e *Engine) KBSearch(ctx context.Context, query string, docTypes []string) []*Hit {
	if e.kb == nil {
		return nil
	}
	hits, err := e.kb.Search(ctx, query, e.limits.KB, docTypes)
	if err != nil {
		e.logger.Warn("KB search failed, falling back to store tiers", zap.Error(err))
		return nil
	}
	return hits
}

// SearchFAQ returns the best FAQ entries for the query. An exact question
// match short-circuits retrieval; otherwise candidates are over-fetched and
// reranked by keyword placement and shared signals.
func (e *Engine) SearchFAQ(ctx context.Context, raw string, q ranking.Query, categoryID string) ([]*models.FAQ, error) {
	exact, err := e.store.FAQByExactQuestion(ctx, raw)
	if err == nil {
		return []*models.FAQ{exact}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	fetch := e.limits.FAQ * 3
	if fetch < minOverFetch {
		fetch = minOverFetch
	}
	candidates, err := e.store.FAQByKeywords(ctx, q.Keywords, categoryID, fetch)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	records := make([]models.KnowledgeRecord, len(candidates))
	for i, f := range candidates {
		records[i] = models.FAQRecord(f)
	}
	ranked := e.reranker.Rerank(q, records, e.limits.FAQ)

	out := make([]*models.FAQ, len(ranked))
	for i, r := range ranked {
		out[i] = r.FAQ
	}
	return out, nil
}

// SearchProcedures returns procedures matching the keywords.
func (e *Engine) SearchProcedures(ctx context.Context, keywords []string) ([]*models.Procedure, error) {
	return e.store.ProceduresByKeywords(ctx, keywords, e.limits.Procedures)
}

// SearchContacts returns directory entries for the query. Two query shapes
// get dedicated filters: scolarité questions and "who is the Master IA
// supervisor" questions.
func (e *Engine) SearchContacts(ctx context.Context, folded string, keywords []string) ([]*models.Contact, error) {
	var filter store.ContactFilter
	switch {
	case strings.Contains(folded, "scolarite"):
		filter.SubCategoryLike = "scolar"
	case strings.Contains(folded, "responsable") &&
		strings.Contains(folded, "master") &&
		(hasToken(folded, "ia") || strings.Contains(folded, "intelligence artificielle")):
		filter.Category = "Responsables pédagogiques"
		filter.ProgramsLikeAny = []string{"master%ia", "m1-ia", "m2-ia"}
	}
	return e.store.ContactsByKeywords(ctx, keywords, filter, e.limits.Contacts)
}

// SearchTimetable returns upcoming slots for the query, filtered by the
// recognized subject or program when one is present.
func (e *Engine) SearchTimetable(ctx context.Context, folded string, entities models.EntityBundle) ([]*models.TimetableSlot, error) {
	var filter store.SlotFilter
	switch {
	case strings.Contains(folded, "machine learning"):
		filter.SubjectLikeAny = []string{"machine learning"}
		filter.SubjectCodeLike = "ml"
	case strings.Contains(folded, "cybersecurite"):
		// Substring "cyber" matches the accented subject names in store.
		filter.SubjectLikeAny = []string{"cyber"}
		if strings.Contains(folded, "b3") {
			filter.ProgramLike = "b3"
		}
	case entities.ProgramCode != "":
		filter.Program = entities.ProgramCode
	}
	return e.store.SlotsFiltered(ctx, filter, e.limits.Slots)
}

// hasToken reports whether the folded text contains word as a whole token.
func hasToken(folded, word string) bool {
	for _, t := range strings.Fields(folded) {
		if t == word {
			return true
		}
	}
	return false
}
