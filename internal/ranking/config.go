package ranking

// RerankConfig holds the integer weights of the signal rerank. Scores are
// penalties: lower is better. Bonus fields are negative, malus fields
// positive.
type RerankConfig struct {
	// Keyword bonuses
	PrimaryKeywordBonus   int `yaml:"primary_keyword_bonus"`   // default: -4 (keyword in question/title)
	SecondaryKeywordBonus int `yaml:"secondary_keyword_bonus"` // default: -2 (keyword only in answer/body)

	// Topic-exclusivity maluses
	ExamOnlyCandidateMalus  int `yaml:"exam_only_candidate_malus"`  // default: +8
	AbsenceQueryOnlyMalus   int `yaml:"absence_query_only_malus"`   // default: +3
	AbsenceCandidateMalus   int `yaml:"absence_candidate_malus"`    // default: +2
	FeriesQueryOnlyMalus    int `yaml:"feries_query_only_malus"`    // default: +3
	FeriesVacancesTolerance int `yaml:"feries_vacances_tolerance"`  // default: +2

	// Semester exclusivity
	SemesterMatchBonus    int `yaml:"semester_match_bonus"`    // default: -5
	SemesterMismatchMalus int `yaml:"semester_mismatch_malus"` // default: +5

	// Period and service signal sharing
	SignalSharedBonus  int `yaml:"signal_shared_bonus"`  // default: -4
	SignalMissingMalus int `yaml:"signal_missing_malus"` // default: +2
}

// DefaultRerankConfig returns the default rerank weights.
func DefaultRerankConfig() *RerankConfig {
	return &RerankConfig{
		PrimaryKeywordBonus:   -4,
		SecondaryKeywordBonus: -2,

		ExamOnlyCandidateMalus:  8,
		AbsenceQueryOnlyMalus:   3,
		AbsenceCandidateMalus:   2,
		FeriesQueryOnlyMalus:    3,
		FeriesVacancesTolerance: 2,

		SemesterMatchBonus:    -5,
		SemesterMismatchMalus: 5,

		SignalSharedBonus:  -4,
		SignalMissingMalus: 2,
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *RerankConfig) ApplyDefaults() {
	defaults := DefaultRerankConfig()

	if c.PrimaryKeywordBonus == 0 {
		c.PrimaryKeywordBonus = defaults.PrimaryKeywordBonus
	}
	if c.SecondaryKeywordBonus == 0 {
		c.SecondaryKeywordBonus = defaults.SecondaryKeywordBonus
	}
	if c.ExamOnlyCandidateMalus == 0 {
		c.ExamOnlyCandidateMalus = defaults.ExamOnlyCandidateMalus
	}
	if c.AbsenceQueryOnlyMalus == 0 {
		c.AbsenceQueryOnlyMalus = defaults.AbsenceQueryOnlyMalus
	}
	if c.AbsenceCandidateMalus == 0 {
		c.AbsenceCandidateMalus = defaults.AbsenceCandidateMalus
	}
	if c.FeriesQueryOnlyMalus == 0 {
		c.FeriesQueryOnlyMalus = defaults.FeriesQueryOnlyMalus
	}
	if c.FeriesVacancesTolerance == 0 {
		c.FeriesVacancesTolerance = defaults.FeriesVacancesTolerance
	}
	if c.SemesterMatchBonus == 0 {
		c.SemesterMatchBonus = defaults.SemesterMatchBonus
	}
	if c.SemesterMismatchMalus == 0 {
		c.SemesterMismatchMalus = defaults.SemesterMismatchMalus
	}
	if c.SignalSharedBonus == 0 {
		c.SignalSharedBonus = defaults.SignalSharedBonus
	}
	if c.SignalMissingMalus == 0 {
		c.SignalMissingMalus = defaults.SignalMissingMalus
	}
}
