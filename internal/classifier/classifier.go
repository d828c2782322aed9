package classifier

import (
	"math"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
)

// Model wraps one loaded artifact. A nil Model (or a Model with a nil
// artifact) is valid and reports itself unavailable.
type Model struct {
	art  *Artifact
	name string
}

// Load opens the artifact at path. When the file is missing or corrupt the
// returned Model is unavailable and the condition is logged, not raised:
// classifier absence degrades the engine to rules only.
func Load(name, path string, logger *zap.Logger) *Model {
	if path == "" {
		return &Model{name: name}
	}
	art, err := LoadArtifact(path)
	if err != nil {
		if logger != nil {
			logger.Warn("classifier artifact unavailable, falling back to rules",
				zap.String("classifier", name),
				zap.String("path", path),
				zap.Error(err))
		}
		return &Model{name: name}
	}
	if logger != nil {
		logger.Info("classifier artifact loaded",
			zap.String("classifier", name),
			zap.String("version", art.Version),
			zap.Strings("labels", art.Labels))
	}
	return &Model{art: art, name: name}
}

// Available reports whether an artifact is loaded.
func (m *Model) Available() bool {
	return m != nil && m.art != nil
}

// Name returns the classifier instance name.
func (m *Model) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// Labels returns the label set, nil when unavailable.
func (m *Model) Labels() []string {
	if !m.Available() {
		return nil
	}
	return m.art.Labels
}

// Margins computes the per-label decision margins for text.
func (m *Model) Margins(text string) []float64 {
	if !m.Available() {
		return nil
	}
	counts := make(map[int]float64)
	for _, tok := range nlp.Tokens(text) {
		if idx, ok := m.art.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	margins := make([]float64, len(m.art.Labels))
	for i := range m.art.Labels {
		score := m.art.Intercepts[i]
		for idx, c := range counts {
			score += m.art.Weights[i][idx] * c
		}
		margins[i] = score
	}
	return margins
}

// Classify returns the best label with its pseudo-confidence: the maximum
// decision margin squashed through a sigmoid. This is a monotonic confidence
// proxy, not a calibrated probability. The second return is false when no
// artifact is loaded.
func (m *Model) Classify(text string) (models.ClassifierResult, bool) {
	margins := m.Margins(text)
	if margins == nil {
		return models.ClassifierResult{}, false
	}
	best := 0
	for i, s := range margins {
		if s > margins[best] {
			best = i
		}
	}
	return models.ClassifierResult{
		Label:      m.art.Labels[best],
		Confidence: sigmoid(margins[best]),
	}, true
}

// Probabilities returns a probability vector over labels when the artifact is
// probabilistic, else nil. Softmax over margins keeps the vector normalized.
func (m *Model) Probabilities(text string) []float64 {
	if !m.Available() || !m.art.Probabilistic {
		return nil
	}
	margins := m.Margins(text)
	return softmax(margins)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func softmax(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		out[i] = math.Exp(x - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
