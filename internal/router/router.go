package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/classifier"
	"github.com/hyperjump/annai/internal/escalate"
	"github.com/hyperjump/annai/internal/intent"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
	"github.com/hyperjump/annai/internal/ranking"
	"github.com/hyperjump/annai/internal/search"
	"github.com/hyperjump/annai/internal/store"
)

// faqCategoryThreshold gates the category filter on FAQ retrieval: below it
// the category vote is ignored and the search stays unfiltered.
const faqCategoryThreshold = 0.5

// contactSeekingWords mirror the contact-keyword list on the external-index
// tier: a contact or procedure hit is preferred over a higher-scored FAQ hit
// when the user plainly wants to reach someone.
var contactSeekingWords = []string{"contacter", "joindre", "email", "mail", "telephone", "appeler"}

// Router runs the full pipeline for one utterance and produces exactly one
// RoutingDecision. Collaborator failures are downgraded, never propagated:
// the only error a caller sees is ErrInputRejected.
type Router struct {
	store     store.Store
	engine    *search.Engine
	resolver  *intent.Resolver
	extractor *nlp.Extractor
	intentCls *classifier.Model
	faqCls    *classifier.Model
	sentiment *classifier.SentimentModel
	logger    *zap.Logger
}

// NewRouter wires the pipeline. All classifier models may be unavailable;
// routing then relies on rules alone.
func NewRouter(
	st store.Store,
	engine *search.Engine,
	extractor *nlp.Extractor,
	intentCls, faqCls *classifier.Model,
	sentiment *classifier.SentimentModel,
	logger *zap.Logger,
) *Router {
	return &Router{
		store:     st,
		engine:    engine,
		resolver:  intent.NewResolver(),
		extractor: extractor,
		intentCls: intentCls,
		faqCls:    faqCls,
		sentiment: sentiment,
		logger:    logger,
	}
}

// Route processes one utterance. The returned decision is immutable and has
// already been persisted to the chat-event log (best effort).
func (r *Router) Route(ctx context.Context, utt models.Utterance) (*models.RoutingDecision, error) {
	start := time.Now()

	msg := strings.TrimSpace(utt.Raw)
	if err := CheckInput(msg); err != nil {
		return nil, err
	}

	folded := nlp.Fold(msg)
	keywords := nlp.Keywords(msg, 0)
	signals := nlp.DetectSignals(msg)
	entities := r.extractor.Extract(msg)
	sent := r.sentiment.Predict(msg)

	decision := r.decide(ctx, msg, folded, keywords, signals, entities, sent)
	decision.ID = uuid.NewString()
	decision.Sentiment = sent.Label
	decision.Urgency = sent.Urgency
	decision.LatencyMS = time.Since(start).Milliseconds()

	r.logEvent(ctx, utt, msg, decision)
	return decision, nil
}

// decide runs the resolution cascade and returns a decision missing only the
// id, sentiment passthrough, and latency.
func (r *Router) decide(
	ctx context.Context,
	msg, folded string,
	keywords []string,
	signals models.SignalSet,
	entities models.EntityBundle,
	sent models.SentimentResult,
) *models.RoutingDecision {
	if msg == "" {
		return fallbackDecision(unresolvedConfidence, nil)
	}

	if intent.IsSmalltalk(msg) {
		return &models.RoutingDecision{
			Intent:     models.IntentSmalltalk,
			Confidence: smalltalkConfidence,
			Answer:     intent.SmalltalkReply,
			Entities:   &entities,
			Resolved:   true,
		}
	}

	if escalate.Evaluate(escalate.Input{Text: msg, Sentiment: sent}) == escalate.StateEscalated {
		return r.escalated(ctx, entities)
	}

	vote, hasVote := models.ClassifierResult{}, false
	if r.intentCls != nil {
		vote, hasVote = r.intentCls.Classify(msg)
	}
	outcome := r.resolver.Resolve(&intent.Context{
		Raw:      msg,
		Folded:   folded,
		Keywords: keywords,
		Entities: entities,
		Signals:  signals,
		Vote:     vote,
		HasVote:  hasVote,
	})

	if d := r.kbTier(ctx, msg, folded, entities); d != nil {
		return d
	}

	rq := ranking.Query{Folded: folded, Keywords: keywords, Signals: signals}
	searched := false

	for _, tier := range r.tierOrder(outcome.Intent) {
		d, attempted := tier(ctx, msg, folded, keywords, rq, entities)
		searched = searched || attempted
		if d != nil {
			d.Entities = &entities
			return d
		}
	}

	if searched {
		return fallbackDecision(fallbackConfidence, &entities)
	}
	return fallbackDecision(unresolvedConfidence, &entities)
}

func fallbackDecision(confidence float64, entities *models.EntityBundle) *models.RoutingDecision {
	return &models.RoutingDecision{
		Intent:     models.IntentFallback,
		Confidence: confidence,
		Answer:     FallbackAnswer,
		Entities:   entities,
		Resolved:   false,
	}
}

// escalated renders the hand-off. Entities are cleared: the decision hands
// the user to a person, not to a knowledge domain.
func (r *Router) escalated(ctx context.Context, entities models.EntityBundle) *models.RoutingDecision {
	var contact *models.Contact
	hint := entities.ServiceHint
	if hint == "" {
		hint = "scolarite"
	}
	c, err := r.store.FirstContactByHint(ctx, hint)
	if err == nil {
		contact = c
	} else if !errors.Is(err, store.ErrNotFound) {
		r.logger.Warn("contact lookup failed during escalation", zap.Error(err))
	}
	return &models.RoutingDecision{
		Intent:     models.IntentEscalation,
		Confidence: escalate.EscalationConfidence,
		Answer:     escalate.Handoff(contact),
		Resolved:   true,
	}
}

// kbTier queries the external full-text index. Contact-seeking queries prefer
// a contact or procedure hit over a higher-scored hit of another type.
func (r *Router) kbTier(ctx context.Context, msg, folded string, entities models.EntityBundle) *models.RoutingDecision {
	hits := r.engine.KBSearch(ctx, msg, nil)
	if len(hits) == 0 {
		return nil
	}

	h := hits[0]
	if containsAnyWord(folded, contactSeekingWords) {
		for _, cand := range hits {
			if cand.DocType == string(models.DomainContact) || cand.DocType == string(models.DomainProcedure) {
				h = cand
				break
			}
		}
	}

	confidence := kbConfidenceBase + h.Score/kbConfidenceScoreScale
	if confidence > kbConfidenceCeiling {
		confidence = kbConfidenceCeiling
	}

	answer := strings.TrimSpace(h.Title + "\n\n" + h.Content)
	intentLabel := intentForDocType(h.DocType)
	if h.DocType == string(models.DomainFAQ) {
		answer = strings.TrimSpace(h.Content)
	}
	return &models.RoutingDecision{
		Intent:     intentLabel,
		Confidence: confidence,
		Answer:     answer,
		Sources:    []models.Source{{Type: h.DocType, ID: h.DBID, Title: h.Title}},
		Entities:   &entities,
		Resolved:   true,
	}
}

// tierFunc attempts one store domain. The bool reports whether a search was
// actually executed, which separates the two fallback confidences.
type tierFunc func(ctx context.Context, msg, folded string, keywords []string, rq ranking.Query, entities models.EntityBundle) (*models.RoutingDecision, bool)

// tierOrder puts the resolved intent's domain first; the remaining domains
// keep the historical faq > procedure > contact cascade.
func (r *Router) tierOrder(resolved string) []tierFunc {
	switch resolved {
	case models.IntentContact:
		return []tierFunc{r.contactTier, r.procedureTier, r.faqTier}
	case models.IntentTimetable:
		return []tierFunc{r.timetableTier, r.faqTier}
	default:
		return []tierFunc{r.faqTier, r.procedureTier, r.contactTier}
	}
}

func (r *Router) faqTier(ctx context.Context, msg, folded string, keywords []string, rq ranking.Query, entities models.EntityBundle) (*models.RoutingDecision, bool) {
	if len(keywords) == 0 {
		return nil, false
	}
	categoryID := ""
	if r.faqCls != nil {
		if vote, ok := r.faqCls.Classify(msg); ok && vote.Confidence >= faqCategoryThreshold {
			categoryID = vote.Label
		}
	}
	results, err := r.engine.SearchFAQ(ctx, msg, rq, categoryID)
	if err != nil {
		r.logger.Warn("FAQ search failed", zap.Error(err))
		return nil, true
	}
	if len(results) == 0 {
		return nil, true
	}
	c := composeFAQ(results[0])
	return &models.RoutingDecision{
		Intent:     models.IntentFAQ,
		Confidence: faqConfidence,
		Answer:     c.Answer,
		Sources:    c.Sources,
		Resolved:   true,
	}, true
}

func (r *Router) procedureTier(ctx context.Context, msg, folded string, keywords []string, rq ranking.Query, entities models.EntityBundle) (*models.RoutingDecision, bool) {
	if len(keywords) == 0 {
		return nil, false
	}
	results, err := r.engine.SearchProcedures(ctx, keywords)
	if err != nil {
		r.logger.Warn("procedure search failed", zap.Error(err))
		return nil, true
	}
	if len(results) == 0 {
		return nil, true
	}
	c := composeProcedure(results[0])
	return &models.RoutingDecision{
		Intent:     models.IntentProcedure,
		Confidence: procedureConfidence,
		Answer:     c.Answer,
		Sources:    c.Sources,
		Resolved:   true,
	}, true
}

func (r *Router) contactTier(ctx context.Context, msg, folded string, keywords []string, rq ranking.Query, entities models.EntityBundle) (*models.RoutingDecision, bool) {
	if len(keywords) == 0 {
		return nil, false
	}
	results, err := r.engine.SearchContacts(ctx, folded, keywords)
	if err != nil {
		r.logger.Warn("contact search failed", zap.Error(err))
		return nil, true
	}
	if len(results) == 0 {
		return nil, true
	}
	c := composeContact(results[0])
	return &models.RoutingDecision{
		Intent:     models.IntentContact,
		Confidence: contactConfidence,
		Answer:     c.Answer,
		Sources:    c.Sources,
		Resolved:   true,
	}, true
}

func (r *Router) timetableTier(ctx context.Context, msg, folded string, keywords []string, rq ranking.Query, entities models.EntityBundle) (*models.RoutingDecision, bool) {
	results, err := r.engine.SearchTimetable(ctx, folded, entities)
	if err != nil {
		r.logger.Warn("timetable search failed", zap.Error(err))
		return nil, true
	}
	if len(results) == 0 {
		return nil, true
	}
	c := composeSlots(results)
	return &models.RoutingDecision{
		Intent:     models.IntentTimetable,
		Confidence: timetableConfidence,
		Answer:     c.Answer,
		Sources:    c.Sources,
		Resolved:   true,
	}, true
}

// logEvent persists the decision. A failed insert is logged and swallowed:
// the user still gets the answer.
func (r *Router) logEvent(ctx context.Context, utt models.Utterance, msg string, d *models.RoutingDecision) {
	channel := utt.Channel
	if channel == "" {
		channel = "web"
	}
	event := &store.ChatEvent{
		ID:         d.ID,
		UserHash:   utt.UserHash,
		Channel:    channel,
		Message:    msg,
		Language:   utt.Language,
		Intent:     d.Intent,
		Entities:   d.Entities,
		Response:   d.Answer,
		Confidence: d.Confidence,
		Resolved:   d.Resolved,
		LatencyMS:  d.LatencyMS,
	}
	if err := r.store.InsertChatEvent(ctx, event); err != nil {
		r.logger.Warn("failed to log chat event", zap.Error(err))
	}
}

func intentForDocType(docType string) string {
	switch docType {
	case string(models.DomainFAQ):
		return models.IntentFAQ
	case string(models.DomainProcedure):
		return models.IntentProcedure
	case string(models.DomainContact):
		return models.IntentContact
	case string(models.DomainTimetable):
		return models.IntentTimetable
	}
	return docType
}

func containsAnyWord(folded string, words []string) bool {
	for _, w := range words {
		if strings.Contains(folded, w) {
			return true
		}
	}
	return false
}
