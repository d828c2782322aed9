package models

// Utterance is one raw end-user text input for a single exchange.
type Utterance struct {
	Raw      string `json:"raw"`
	Language string `json:"language,omitempty"`
	Channel  string `json:"channel,omitempty"`
	UserHash string `json:"user_hash,omitempty"`
}

// SignalSet holds the boolean topical markers extracted from a text fragment.
// It is computed identically for the live query and for every candidate
// record, which is what makes the signal rerank a direct comparison.
type SignalSet struct {
	HasS1 bool `json:"has_s1"`
	HasS2 bool `json:"has_s2"`

	HasVacances bool `json:"has_vacances"`
	HasWeekend  bool `json:"has_weekend"`
	HasFeries   bool `json:"has_feries"`

	HasBiblio    bool `json:"has_biblio"`
	HasRestoU    bool `json:"has_resto_u"`
	HasCafeteria bool `json:"has_cafeteria"`
	HasParking   bool `json:"has_parking"`
	HasVPN       bool `json:"has_vpn"`
	HasENT       bool `json:"has_ent"`
}

// PeriodFlags returns the period markers in a fixed order, paired with names
// for score breakdowns.
func (s SignalSet) PeriodFlags() []NamedFlag {
	return []NamedFlag{
		{"vacances", s.HasVacances},
		{"weekend", s.HasWeekend},
		{"feries", s.HasFeries},
	}
}

// ServiceFlags returns the service markers in a fixed order.
func (s SignalSet) ServiceFlags() []NamedFlag {
	return []NamedFlag{
		{"biblio", s.HasBiblio},
		{"resto_u", s.HasRestoU},
		{"cafeteria", s.HasCafeteria},
		{"parking", s.HasParking},
		{"vpn", s.HasVPN},
		{"ent", s.HasENT},
	}
}

// NamedFlag is one boolean signal with its name.
type NamedFlag struct {
	Name string
	Set  bool
}

// Span is one raw tagger span with its label (e.g. DATE, PER, LOC).
type Span struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// EntityBundle holds the structured signals extracted from one utterance.
// Every field is best-effort: absence is the zero value, never an error.
// Immutable once built.
type EntityBundle struct {
	ServiceHint string   `json:"service_hint,omitempty"`
	Formation   string   `json:"formation,omitempty"`
	ProgramCode string   `json:"program_code,omitempty"`
	Subject     string   `json:"subject,omitempty"`
	DatePhrases []string `json:"date_phrases,omitempty"`
	Spans       []Span   `json:"spans,omitempty"`
}

// ClassifierResult is one statistical vote. Confidence is a sigmoid-squashed
// decision margin: a monotonic proxy, NOT a calibrated probability, and the
// values do not sum to one across labels.
type ClassifierResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SentimentResult is the output of the sentiment/urgency classifier.
type SentimentResult struct {
	Label   string  `json:"label"`
	Urgency float64 `json:"urgency_score"`
}

// Sentiment labels.
const (
	SentimentNeutral      = "neutre"
	SentimentFrustration  = "frustration"
	SentimentUrgent       = "urgent"
	SentimentSatisfaction = "satisfaction"
)
