package nlp

import (
	"reflect"
	"testing"
)

func TestExtractServiceHint(t *testing.T) {
	e := NewExtractor(LexiconTagger{})

	tests := []struct {
		in   string
		want string
	}{
		{"Comment contacter le service scolarité ?", "scolarite"},
		{"un souci avec la bibliothèque", "bibliotheque"},
		{"le helpdesk ne répond pas", "helpdesk"},
		{"question pour le service IT", "it"},
		{"la comptabilité m'a relancé", "comptabilite"},
		{"rien de pertinent ici", ""},
		// "it" must not fire inside other words.
		{"où est la cafétéria du site ?", ""},
	}

	for _, tt := range tests {
		if got := e.Extract(tt.in).ServiceHint; got != tt.want {
			t.Errorf("ServiceHint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractProgram(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		in            string
		wantFormation string
		wantCode      string
	}{
		{"je suis en data science 2eme annee", "data science 2eme annee", "M2-IA"},
		{"emploi du temps data science 1ère année", "data science 1ere annee", "M1-IA"},
		{"les cours de B3 cyber", "", "B3-CYBER"},
		{"bachelor 3 data science au complet", "", "B3-DATA"},
		{"le responsable du master 2 IA", "", "M2-IA"},
		{"aucune formation mentionnée", "", ""},
	}

	for _, tt := range tests {
		b := e.Extract(tt.in)
		if b.Formation != tt.wantFormation || b.ProgramCode != tt.wantCode {
			t.Errorf("Extract(%q) formation=%q code=%q, want %q %q",
				tt.in, b.Formation, b.ProgramCode, tt.wantFormation, tt.wantCode)
		}
	}
}

func TestExtractSubject(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"le cours de machine learning", "machine learning"},
		{"le prof de cybersécurité", "cybersécurité"},
		{"le cours de maths", ""},
	}

	for _, tt := range tests {
		if got := e.Extract(tt.in).Subject; got != tt.want {
			t.Errorf("Subject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractDatePhrases(t *testing.T) {
	e := NewExtractor(LexiconTagger{})

	b := e.Extract("Quels cours lundi prochain ?")
	want := []string{"lundi", "lundi prochain"}
	if !reflect.DeepEqual(b.DatePhrases, want) {
		t.Errorf("DatePhrases = %v, want %v", b.DatePhrases, want)
	}

	b = e.Extract("on se voit demain")
	want = []string{"demain"}
	if !reflect.DeepEqual(b.DatePhrases, want) {
		t.Errorf("DatePhrases = %v, want %v", b.DatePhrases, want)
	}
}

func TestExtractIsBestEffort(t *testing.T) {
	// A nil tagger and an unremarkable text yield an empty bundle, not an error.
	e := NewExtractor(nil)
	b := e.Extract("merci beaucoup")
	if b.ServiceHint != "" || b.ProgramCode != "" || b.Subject != "" ||
		len(b.DatePhrases) != 0 || len(b.Spans) != 0 {
		t.Errorf("expected empty bundle, got %+v", b)
	}
}

func TestLexiconTagger(t *testing.T) {
	spans := LexiconTagger{}.Tag("rendez-vous avec Madame Dupont mardi")
	var gotDate, gotPer bool
	for _, s := range spans {
		if s.Label == "DATE" && s.Text == "mardi" {
			gotDate = true
		}
		if s.Label == "PER" {
			gotPer = true
		}
	}
	if !gotDate || !gotPer {
		t.Errorf("Tag() = %+v, want a DATE and a PER span", spans)
	}
}
