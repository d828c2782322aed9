// Package ranking provides the signal-based rerank that corrects for topical
// mismatches keyword retrieval cannot detect: an "S1 holidays" query must not
// surface an "S2 exam" record even with lexical overlap.
package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
)

// Query is the analyzed live query: folded text, capped keywords, and the
// signal set all candidates are compared against.
type Query struct {
	Folded   string
	Keywords []string
	Signals  models.SignalSet
}

// AnalyzeQuery builds a rerank Query from raw text.
func AnalyzeQuery(text string) Query {
	return Query{
		Folded:   nlp.Fold(text),
		Keywords: nlp.Keywords(text, 0),
		Signals:  nlp.DetectSignals(text),
	}
}

// ScoredRecord pairs a candidate with its rerank score and breakdown.
type ScoredRecord struct {
	Record    models.KnowledgeRecord
	Score     int
	Breakdown map[string]int
}

// Reranker rescores keyword-retrieved candidates with the signal weights.
type Reranker struct {
	config *RerankConfig
}

// NewReranker creates a Reranker; nil config means defaults.
func NewReranker(config *RerankConfig) *Reranker {
	if config == nil {
		config = DefaultRerankConfig()
	}
	config.ApplyDefaults()
	return &Reranker{config: config}
}

// Rerank sorts candidates ascending by signal score and returns the top
// limit. The sort is stable: ties preserve retrieval order, and reranking an
// already-sorted list yields the same order.
func (r *Reranker) Rerank(q Query, candidates []models.KnowledgeRecord, limit int) []models.KnowledgeRecord {
	scored := r.ScoreAll(q, candidates)
	out := make([]models.KnowledgeRecord, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Record)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ScoreAll scores every candidate and returns them sorted ascending, with
// per-rule breakdowns for explainability.
func (r *Reranker) ScoreAll(q Query, candidates []models.KnowledgeRecord) []ScoredRecord {
	scored := make([]ScoredRecord, len(candidates))
	for i, c := range candidates {
		score, breakdown := r.Score(q, c)
		scored[i] = ScoredRecord{Record: c, Score: score, Breakdown: breakdown}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})
	return scored
}

// Score computes the integer rerank score of one candidate. Lower is better.
func (r *Reranker) Score(q Query, rec models.KnowledgeRecord) (int, map[string]int) {
	cfg := r.config
	breakdown := make(map[string]int)
	score := 0
	add := func(rule string, delta int) {
		if delta == 0 {
			return
		}
		score += delta
		breakdown[rule] += delta
	}

	primary := nlp.Fold(rec.PrimaryText())
	secondary := nlp.Fold(rec.SecondaryText())
	candidate := primary + " " + secondary

	// Keyword placement: primary-field hits outrank secondary-field hits.
	for _, kw := range q.Keywords {
		switch {
		case strings.Contains(primary, kw):
			add("keyword_primary", cfg.PrimaryKeywordBonus)
		case strings.Contains(secondary, kw):
			add("keyword_secondary", cfg.SecondaryKeywordBonus)
		}
	}

	// Topic exclusivity: exam records must not answer non-exam queries.
	qExam := mentionsExam(q.Folded)
	cExam := mentionsExam(candidate)
	if cExam && !qExam {
		add("exam_exclusive", cfg.ExamOnlyCandidateMalus)
	}

	qAbsence := mentionsAbsence(q.Folded)
	cAbsence := mentionsAbsence(candidate)
	if qAbsence && !cAbsence {
		add("absence_query_only", cfg.AbsenceQueryOnlyMalus)
	}
	if !qAbsence && cAbsence {
		add("absence_candidate_only", cfg.AbsenceCandidateMalus)
	}

	qFeries := mentionsFeries(q.Folded)
	cFeries := mentionsFeries(candidate)
	if qFeries && !cFeries {
		add("feries_query_only", cfg.FeriesQueryOnlyMalus)
	}
	if !qFeries && cFeries && strings.Contains(candidate, "vacances") {
		// Partial tolerance: a holidays record answering a vacation query is
		// close enough to keep, at a small cost.
		add("feries_vacances", cfg.FeriesVacancesTolerance)
	}

	// Semester exclusivity.
	candSignals := nlp.DetectSignals(rec.SearchText())
	if q.Signals.HasS1 || q.Signals.HasS2 {
		if q.Signals.HasS1 && candSignals.HasS1 && !candSignals.HasS2 {
			add("semester_match", cfg.SemesterMatchBonus)
		}
		if q.Signals.HasS2 && candSignals.HasS2 && !candSignals.HasS1 {
			add("semester_match", cfg.SemesterMatchBonus)
		}
		if q.Signals.HasS1 && candSignals.HasS2 && !candSignals.HasS1 {
			add("semester_mismatch", cfg.SemesterMismatchMalus)
		}
		if q.Signals.HasS2 && candSignals.HasS1 && !candSignals.HasS2 {
			add("semester_mismatch", cfg.SemesterMismatchMalus)
		}
	}

	// Period and service signals: shared is rewarded, missing is penalized.
	qPeriods, cPeriods := q.Signals.PeriodFlags(), candSignals.PeriodFlags()
	for i, flag := range qPeriods {
		if !flag.Set {
			continue
		}
		if cPeriods[i].Set {
			add("period_"+flag.Name, cfg.SignalSharedBonus)
		} else {
			add("period_"+flag.Name, cfg.SignalMissingMalus)
		}
	}
	qServices, cServices := q.Signals.ServiceFlags(), candSignals.ServiceFlags()
	for i, flag := range qServices {
		if !flag.Set {
			continue
		}
		if cServices[i].Set {
			add("service_"+flag.Name, cfg.SignalSharedBonus)
		} else {
			add("service_"+flag.Name, cfg.SignalMissingMalus)
		}
	}

	return score, breakdown
}

func mentionsExam(folded string) bool {
	return strings.Contains(folded, "examen")
}

func mentionsAbsence(folded string) bool {
	return strings.Contains(folded, "absence")
}

func mentionsFeries(folded string) bool {
	return strings.Contains(folded, "jour feri") ||
		strings.Contains(folded, "jours feri") ||
		strings.Contains(folded, "feries")
}
