package intent

import (
	"strings"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
)

// Classifier confidence thresholds. The timetable bar is deliberately lower:
// timetable phrasings are short and the classifier margin rarely climbs high
// on them, while false positives are cheap (the timetable search is heavily
// filtered downstream).
const (
	contactVoteThreshold   = 0.6
	timetableVoteThreshold = 0.3
)

// Rule names, exported so callers and tests can audit precedence.
const (
	RuleContact        = "contact"
	RuleTimetableForce = "timetable-force"
	RuleTimetable      = "timetable"
	RuleFAQ            = "faq"
	RuleFallback       = "fallback"
)

// contactExactPhrases are literal phrases (folded) that assert contact intent
// on their own.
var contactExactPhrases = []string{
	"comment contacter le service scolarite",
	"comment joindre la scolarite",
	"comment contacter le secretariat",
	"je veux contacter l administration",
	"a qui m adresser",
}

// contactKeywords assert contact intent unless the timetable veto applies.
var contactKeywords = []string{"contacter", "joindre", "email", "mail", "telephone", "appeler"}

// timetableVetoWords suppress contact intent: a query about courses wants the
// timetable even when it mentions reaching someone.
var timetableVetoWords = []string{"cours", "emploi du temps", "planning"}

// contactVetoOverrides re-enable contact despite a timetable veto word: these
// phrasings ask for a person in charge, not for the schedule itself.
var contactVetoOverrides = []string{
	"contacter le responsable",
	"joindre le responsable",
	"email du responsable",
	"qui contacter",
}

// timetablePhrases are partial phrases asserting timetable intent.
var timetablePhrases = []string{
	"emploi du temps",
	"quand sont les examens",
	"dates des examens",
	"quand a lieu",
	"prochain cours",
	"quels cours",
	"quel cours",
	"planning des cours",
	"salle du cours",
}

// examWords mark exam-related queries.
var examWords = []string{"examen", "examens", "partiel", "partiels"}

// timetableForcePhrases pin timetable intent and cancel a contact match.
// These exact phrasings historically misrouted to contact because of
// "contacter"-adjacent wording.
var timetableForcePhrases = []string{
	"quel est mon emploi du temps",
	"quand sont les examens de machine learning",
	"quand est le prochain cours de machine learning",
	"qui enseigne le machine learning",
}

// faqInterrogatives are the French interrogative tokens a FAQ-style question
// starts with.
var faqInterrogatives = []string{
	"comment", "pourquoi", "quand", "quel", "quelle", "quels", "quelles",
	"ou", "qui", "que", "quoi", "combien", "est",
}

// greetings is the smalltalk vocabulary. An utterance made only of these
// tokens is a pure greeting.
var greetings = map[string]struct{}{
	"bonjour": {}, "bonsoir": {}, "salut": {}, "coucou": {}, "hello": {},
	"hey": {}, "yo": {}, "re": {}, "hi": {},
}

// SmalltalkReply is the fixed canned reply for pure greetings.
const SmalltalkReply = "Bonjour ! Je suis l'assistant du campus. " +
	"Posez-moi une question sur les contacts, les emplois du temps ou la vie étudiante."

// Resolver owns the ordered rule list for the four routable intents. The
// smalltalk short-circuit and the escalation pre-check run upstream in the
// router; everything after runs here.
type Resolver struct {
	engine *Engine
}

// NewResolver builds the resolver with the default rule list.
func NewResolver() *Resolver {
	return &Resolver{engine: NewEngine(defaultRules())}
}

// IsSmalltalk reports whether the utterance is a pure greeting.
func IsSmalltalk(text string) bool {
	tokens := nlp.Tokens(text)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := greetings[tok]; !ok {
			return false
		}
	}
	return true
}

// Resolve evaluates the rule list. The outcome always carries an intent:
// the fallback rule matches unconditionally at the lowest priority.
func (r *Resolver) Resolve(ctx *Context) Outcome {
	out := r.engine.Evaluate(ctx)
	if out.Intent == "" {
		out = Outcome{Intent: models.IntentFallback, Confidence: 0.1, Rule: RuleFallback}
	}
	return out
}

// Engine exposes the underlying rule engine for audit.
func (r *Resolver) Engine() *Engine {
	return r.engine
}

func defaultRules() []Rule {
	return []Rule{
		{
			Name:     RuleContact,
			Priority: 40,
			Intent:   models.IntentContact,
			Applies:  contactApplies,
			Confidence: func(ctx *Context) float64 {
				if ctx.HasVote && ctx.Vote.Label == models.IntentContact && ctx.Vote.Confidence >= contactVoteThreshold {
					return ctx.Vote.Confidence
				}
				return 0.8
			},
		},
		{
			Name:     RuleTimetableForce,
			Priority: 35,
			Intent:   models.IntentTimetable,
			Vetoes:   []string{RuleContact},
			Applies: func(ctx *Context, _ Fired) bool {
				return containsAny(ctx.Folded, timetableForcePhrases)
			},
			Confidence: func(*Context) float64 { return 0.9 },
		},
		{
			Name:     RuleTimetable,
			Priority: 30,
			Intent:   models.IntentTimetable,
			Applies:  timetableApplies,
			Confidence: func(ctx *Context) float64 {
				if ctx.HasVote && ctx.Vote.Label == models.IntentTimetable && ctx.Vote.Confidence >= timetableVoteThreshold {
					return ctx.Vote.Confidence
				}
				return 0.8
			},
		},
		{
			Name:     RuleFAQ,
			Priority: 20,
			Intent:   models.IntentFAQ,
			Applies: func(ctx *Context, fired Fired) bool {
				if fired[RuleContact] || fired[RuleTimetable] || fired[RuleTimetableForce] {
					return false
				}
				return looksLikeQuestion(ctx)
			},
			Confidence: func(*Context) float64 { return 0.6 },
		},
		{
			Name:       RuleFallback,
			Priority:   0,
			Intent:     models.IntentFallback,
			Applies:    func(*Context, Fired) bool { return true },
			Confidence: func(*Context) float64 { return 0.1 },
		},
	}
}

func contactApplies(ctx *Context, _ Fired) bool {
	voteSays := ctx.HasVote && ctx.Vote.Label == models.IntentContact && ctx.Vote.Confidence >= contactVoteThreshold
	phraseSays := containsAny(ctx.Folded, contactExactPhrases)
	keywordSays := containsAny(ctx.Folded, contactKeywords)

	if !voteSays && !phraseSays && !keywordSays {
		return false
	}

	// Timetable veto: mentions of cours/emploi du temps/planning flip the
	// query to schedule territory unless an override phrase re-enables
	// contact. Exact contact phrases are themselves exempt.
	if containsAny(ctx.Folded, timetableVetoWords) && !phraseSays {
		return containsAny(ctx.Folded, contactVetoOverrides)
	}
	return true
}

func timetableApplies(ctx *Context, _ Fired) bool {
	if ctx.HasVote && ctx.Vote.Label == models.IntentTimetable && ctx.Vote.Confidence >= timetableVoteThreshold {
		return true
	}
	if containsAny(ctx.Folded, timetablePhrases) {
		return true
	}
	if containsAny(ctx.Folded, examWords) {
		if strings.Contains(ctx.Folded, "machine learning") || ctx.Entities.Subject != "" {
			return true
		}
	}
	return false
}

func looksLikeQuestion(ctx *Context) bool {
	if strings.Contains(ctx.Raw, "?") {
		return true
	}
	tokens := strings.Fields(ctx.Folded)
	if len(tokens) == 0 {
		return false
	}
	for _, interrogative := range faqInterrogatives {
		if tokens[0] == interrogative {
			return true
		}
	}
	return false
}

func containsAny(folded string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(folded, p) {
			return true
		}
	}
	return false
}
