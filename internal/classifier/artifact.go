// Package classifier loads versioned linear-model artifacts and exposes them
// as opaque scoring functions. A missing or corrupt artifact is never fatal:
// the engine degrades to rule-only behavior.
package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the on-disk form of one trained linear classifier: a bag-of-words
// vocabulary plus one weight row and intercept per label (one-vs-rest).
type Artifact struct {
	Version    string         `json:"version"`
	Labels     []string       `json:"labels"`
	Vocabulary map[string]int `json:"vocabulary"`
	Weights    [][]float64    `json:"weights"`
	Intercepts []float64      `json:"intercepts"`
	// Probabilistic marks artifacts trained with a probabilistic objective
	// (logistic regression): their normalized scores are usable as a proba
	// vector. Margin-based artifacts (linear SVM) are not.
	Probabilistic bool `json:"probabilistic"`
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	if err := art.validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	return &art, nil
}

func (a *Artifact) validate() error {
	if len(a.Labels) == 0 {
		return fmt.Errorf("no labels")
	}
	if len(a.Weights) != len(a.Labels) {
		return fmt.Errorf("weight rows (%d) != labels (%d)", len(a.Weights), len(a.Labels))
	}
	if len(a.Intercepts) != len(a.Labels) {
		return fmt.Errorf("intercepts (%d) != labels (%d)", len(a.Intercepts), len(a.Labels))
	}
	dim := len(a.Vocabulary)
	for i, row := range a.Weights {
		if len(row) != dim {
			return fmt.Errorf("weight row %d has %d features, vocabulary has %d", i, len(row), dim)
		}
	}
	return nil
}
