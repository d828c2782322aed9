package classifier

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/annai/internal/models"
)

// writeArtifact marshals an artifact to a temp file and returns its path.
func writeArtifact(t *testing.T, art *Artifact) string {
	t.Helper()
	data, err := json.Marshal(art)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

// intentArtifact is a tiny two-label model: "contacter"/"joindre" push toward
// contact, "cours"/"examens" toward timetable.
func intentArtifact() *Artifact {
	return &Artifact{
		Version: "test-1",
		Labels:  []string{"contact", "timetable"},
		Vocabulary: map[string]int{
			"contacter": 0,
			"joindre":   1,
			"cours":     2,
			"examens":   3,
		},
		Weights: [][]float64{
			{2.0, 2.0, -1.5, -1.5},
			{-1.5, -1.5, 2.0, 2.0},
		},
		Intercepts: []float64{-0.5, -0.5},
	}
}

func TestLoadAbsentArtifact(t *testing.T) {
	m := Load("intent", filepath.Join(t.TempDir(), "missing.json"), nil)
	if m.Available() {
		t.Fatal("missing artifact must yield an unavailable model")
	}
	if _, ok := m.Classify("bonjour"); ok {
		t.Error("Classify on unavailable model must report ok=false")
	}
}

func TestLoadCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if m := Load("intent", path, nil); m.Available() {
		t.Error("corrupt artifact must yield an unavailable model")
	}
}

func TestLoadValidatesDimensions(t *testing.T) {
	art := intentArtifact()
	art.Intercepts = []float64{0}
	if _, err := LoadArtifact(writeArtifact(t, art)); err == nil {
		t.Error("expected validation error for mismatched intercepts")
	}
}

func TestClassify(t *testing.T) {
	m := Load("intent", writeArtifact(t, intentArtifact()), nil)
	if !m.Available() {
		t.Fatal("expected model to load")
	}

	tests := []struct {
		text      string
		wantLabel string
	}{
		{"comment contacter le service", "contact"},
		{"je veux joindre quelqu'un", "contact"},
		{"quand sont les examens", "timetable"},
		{"mes cours de demain", "timetable"},
	}
	for _, tt := range tests {
		res, ok := m.Classify(tt.text)
		if !ok {
			t.Fatalf("Classify(%q) not ok", tt.text)
		}
		if res.Label != tt.wantLabel {
			t.Errorf("Classify(%q) label = %q, want %q", tt.text, res.Label, tt.wantLabel)
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("Classify(%q) confidence %f out of [0,1]", tt.text, res.Confidence)
		}
	}
}

func TestConfidenceIsSigmoidOfMargin(t *testing.T) {
	m := Load("intent", writeArtifact(t, intentArtifact()), nil)
	text := "contacter contacter"
	margins := m.Margins(text)
	res, _ := m.Classify(text)
	// margin for contact: 2*2.0 - 0.5 = 3.5
	wantMargin := 3.5
	if math.Abs(margins[0]-wantMargin) > 1e-9 {
		t.Fatalf("margin = %f, want %f", margins[0], wantMargin)
	}
	wantConf := 1.0 / (1.0 + math.Exp(-wantMargin))
	if math.Abs(res.Confidence-wantConf) > 1e-9 {
		t.Errorf("confidence = %f, want sigmoid(margin) = %f", res.Confidence, wantConf)
	}
}

func TestSentimentWithProbabilisticArtifact(t *testing.T) {
	art := &Artifact{
		Version: "test-1",
		Labels:  []string{"neutre", "frustration", "urgent"},
		Vocabulary: map[string]int{
			"inadmissible": 0,
			"urgent":       1,
			"merci":        2,
		},
		Weights: [][]float64{
			{-2.0, -2.0, 2.0},
			{3.0, 0.5, -1.0},
			{0.5, 3.0, -1.0},
		},
		Intercepts:    []float64{0.5, -0.5, -0.5},
		Probabilistic: true,
	}
	s := NewSentimentModel(Load("sentiment", writeArtifact(t, art), nil))

	res := s.Predict("c'est inadmissible et urgent")
	if res.Label == models.SentimentNeutral {
		t.Errorf("expected a negative label, got %q", res.Label)
	}
	if res.Urgency <= 0 || res.Urgency > 1 {
		t.Errorf("urgency %f out of (0,1]", res.Urgency)
	}

	calm := s.Predict("merci merci")
	if calm.Label != models.SentimentNeutral {
		t.Errorf("expected neutre, got %q", calm.Label)
	}
	if calm.Urgency >= res.Urgency {
		t.Errorf("calm urgency %f should be below angry urgency %f", calm.Urgency, res.Urgency)
	}
}

func TestSentimentRuleFallback(t *testing.T) {
	s := NewSentimentModel(Load("sentiment", "", nil))
	if s.Available() {
		t.Fatal("expected unavailable sentiment model")
	}

	angry := s.Predict("C'est inadmissible, c'est la troisième fois que j'attends !")
	if angry.Label != models.SentimentFrustration {
		t.Errorf("label = %q, want frustration", angry.Label)
	}
	if angry.Urgency < 0.4 {
		t.Errorf("urgency = %f, want >= 0.4 so rule-only escalation stays reachable", angry.Urgency)
	}

	calm := s.Predict("quels sont les horaires de la bibliothèque ?")
	if calm.Label != models.SentimentNeutral || calm.Urgency != 0.2 {
		t.Errorf("calm = %+v, want neutre/0.2", calm)
	}
}

func TestMatchesComplaintLexicon(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"C'est inadmissible !", true},
		{"toujours pas de réponse", true},
		{"c'est la troisième fois", true},
		{"quels sont mes cours demain ?", false},
		{"merci pour votre aide", false},
	}
	for _, tt := range tests {
		if got := MatchesComplaintLexicon(tt.in); got != tt.want {
			t.Errorf("MatchesComplaintLexicon(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
