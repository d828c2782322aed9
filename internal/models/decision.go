package models

// Intent values produced by the resolver.
const (
	IntentContact    = "contact"
	IntentTimetable  = "timetable"
	IntentFAQ        = "faq"
	IntentProcedure  = "procedure"
	IntentSmalltalk  = "smalltalk"
	IntentEscalation = "escalation"
	IntentFallback   = "fallback"
)

// Source describes where an answer came from.
type Source struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// RoutingDecision is the sole output contract of the routing engine: exactly
// one per utterance, immutable once built. Serialization and presentation
// beyond the answer string belong to the caller.
type RoutingDecision struct {
	ID         string        `json:"id"`
	Intent     string        `json:"intent"`
	Confidence float64       `json:"confidence"`
	Answer     string        `json:"answer"`
	Sources    []Source      `json:"sources"`
	Entities   *EntityBundle `json:"entities,omitempty"`
	Sentiment  string        `json:"sentiment,omitempty"`
	Urgency    float64       `json:"urgency_score"`
	Resolved   bool          `json:"resolved"`
	LatencyMS  int64         `json:"latency_ms"`
}
