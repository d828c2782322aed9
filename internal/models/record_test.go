package models

import (
	"strings"
	"testing"
	"time"
)

func TestKnowledgeRecordSource(t *testing.T) {
	tests := []struct {
		name      string
		record    KnowledgeRecord
		wantType  string
		wantID    int64
		wantTitle string
	}{
		{
			name:      "faq",
			record:    FAQRecord(&FAQ{ID: 3, Question: "Comment obtenir un certificat ?", Answer: "Via l'ENT."}),
			wantType:  "faq",
			wantID:    3,
			wantTitle: "Comment obtenir un certificat ?",
		},
		{
			name:      "procedure",
			record:    ProcedureRecord(&Procedure{ID: 7, Title: "Demande de bourse", Summary: "Dossier CROUS."}),
			wantType:  "procedure",
			wantID:    7,
			wantTitle: "Demande de bourse",
		},
		{
			name:      "contact with name",
			record:    ContactRecord(&Contact{ID: 1, FullName: "Marie Durand", SubCategory: "Scolarité"}),
			wantType:  "contacts",
			wantID:    1,
			wantTitle: "Marie Durand",
		},
		{
			name:      "contact falls back to sub-category",
			record:    ContactRecord(&Contact{ID: 2, SubCategory: "Scolarité", Category: "Services étudiants"}),
			wantType:  "contacts",
			wantID:    2,
			wantTitle: "Scolarité",
		},
		{
			name:      "contact falls back to category",
			record:    ContactRecord(&Contact{ID: 4, Category: "Services étudiants"}),
			wantType:  "contacts",
			wantID:    4,
			wantTitle: "Services étudiants",
		},
		{
			name:      "timetable",
			record:    SlotRecord(&TimetableSlot{ID: 9, SubjectName: "Machine Learning"}),
			wantType:  "timetable",
			wantID:    9,
			wantTitle: "Machine Learning",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.record.Source()
			if src.Type != tt.wantType || src.ID != tt.wantID || src.Title != tt.wantTitle {
				t.Errorf("Source() = %+v, want {%s %d %s}", src, tt.wantType, tt.wantID, tt.wantTitle)
			}
		})
	}
}

func TestSearchTextIncludesTags(t *testing.T) {
	rec := FAQRecord(&FAQ{
		Question:     "Horaires bibliothèque",
		Answer:       "9h-18h",
		Tags:         []string{"bibliotheque", "horaires"},
		CategoryName: "Vie du campus",
		CategoryID:   "campus",
	})
	txt := rec.SearchText()
	for _, want := range []string{"Horaires bibliothèque", "9h-18h", "bibliotheque", "Vie du campus", "campus"} {
		if !strings.Contains(txt, want) {
			t.Errorf("SearchText() missing %q: %q", want, txt)
		}
	}
}

func TestFormatSlot(t *testing.T) {
	start := time.Date(2025, 9, 22, 9, 0, 0, 0, time.UTC)
	s := &TimetableSlot{
		SubjectName: "Machine Learning",
		Room:        "B204",
		Teacher:     "Dr. Lefevre",
		Start:       start,
		End:         start.Add(2 * time.Hour),
	}
	got := FormatSlot(s)
	for _, want := range []string{"Machine Learning", "09:00", "11:00", "B204", "Dr. Lefevre"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatSlot() missing %q: %q", want, got)
		}
	}
}

func TestSignalFlagOrders(t *testing.T) {
	s := SignalSet{HasVacances: true, HasENT: true}
	periods := s.PeriodFlags()
	if len(periods) != 3 || periods[0].Name != "vacances" || !periods[0].Set {
		t.Errorf("PeriodFlags() = %+v", periods)
	}
	services := s.ServiceFlags()
	if len(services) != 6 || services[5].Name != "ent" || !services[5].Set {
		t.Errorf("ServiceFlags() = %+v", services)
	}
}
