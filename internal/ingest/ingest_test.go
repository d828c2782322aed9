package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/store"
)

var semStart = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFAQKeyAliases(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "faq.json", `{
		"items": [
			{"question": "Q1 ?", "answer": "A1", "categorie": "Vie étudiante", "tags": ["horaires"]},
			{"q": "Q2 ?", "reponse": "A2"},
			{"demande": "Q3 ?", "Réponse": "A3"},
			{"question": "sans réponse"},
			{"commentaire": "ni question ni réponse"}
		]
	}`)

	items, err := LoadFAQ(path)
	if err != nil {
		t.Fatalf("LoadFAQ() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("LoadFAQ() = %d items, want 3", len(items))
	}
	if items[0].CategoryName != "Vie étudiante" || items[0].CategoryID != "vie_etudiante" {
		t.Errorf("category = %q/%q, want name + slug id", items[0].CategoryName, items[0].CategoryID)
	}
	if items[0].Language != "fr" {
		t.Errorf("Language = %q, want default fr", items[0].Language)
	}
	if len(items[0].Tags) != 1 {
		t.Errorf("Tags = %v, want [horaires]", items[0].Tags)
	}
}

func TestLoadContactsRequiresReachability(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "contacts.json", `[
		{"service": "Scolarité", "email": "scolarite@campus.fr", "nom": "Marie Durand"},
		{"departement": "Helpdesk", "tel": "01 02 03 04 05"},
		{"service": "Fantôme"},
		{"nom": "Sans service", "email": "x@campus.fr"}
	]`)

	items, err := LoadContacts(path)
	if err != nil {
		t.Fatalf("LoadContacts() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("LoadContacts() = %d items, want 2 (service + email-or-phone required)", len(items))
	}
	if items[0].SubCategory != "Scolarité" || items[0].FullName != "Marie Durand" {
		t.Errorf("first contact = %+v", items[0])
	}
	if items[1].Phone != "01 02 03 04 05" {
		t.Errorf("second contact phone = %q", items[1].Phone)
	}
}

func TestLoadProcedures(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "procedures.json", `[
		{"titre": "Demande de bourse", "résumé": "Dossier social étudiant.", "étapes": ["Créer un compte", "Remplir le DSE"]},
		{"description": "sans titre"}
	]`)

	items, err := LoadProcedures(path)
	if err != nil {
		t.Fatalf("LoadProcedures() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("LoadProcedures() = %d items, want 1", len(items))
	}
	if items[0].Title != "Demande de bourse" || len(items[0].Steps) != 2 {
		t.Errorf("procedure = %+v", items[0])
	}
}

func TestLoadTimetableCSV(t *testing.T) {
	dir := t.TempDir()
	csv := "EXPORT EMPLOI DU TEMPS\n" +
		"genere le 2026-08-30\n" +
		";formation,groupe,semestre,jour,heure_debut,heure_fin,matiere_code,matiere_nom,type_cours,enseignant_nom,salle_code,salle_nom,batiment;\n" +
		";M1-IA,A,S1,lundi,09:00,11:00,ML101,Machine Learning,CM,Dr. Lefevre,B204,Salle Turing,Batiment B;\n" +
		";M1-IA,A,S1,mardi,14:00,16:00,ST201,Statistiques,TD,Mme Caron,B101,,;\n" +
		";,,,,,,,,,,,,;\n"
	path := writeFile(t, dir, "timetable.csv", csv)

	slots, err := LoadTimetableCSV(path, semStart)
	if err != nil {
		t.Fatalf("LoadTimetableCSV() error = %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("LoadTimetableCSV() = %d slots, want 2 (filler row skipped)", len(slots))
	}
	first := slots[0]
	if first.Program != "M1-IA" || first.SubjectCode != "ML101" {
		t.Errorf("first slot = %+v", first)
	}
	// Monday of the semester start week at 09:00.
	want := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	if !first.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", first.Start, want)
	}
	if first.Room != "Salle Turing B204 Batiment B" {
		t.Errorf("Room = %q", first.Room)
	}
	if slots[1].Start.Weekday() != time.Tuesday {
		t.Errorf("second slot weekday = %v, want Tuesday", slots[1].Start.Weekday())
	}
}

func TestFixMojibake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Introduction Ã\u00a0 la Programmation", "Introduction à la Programmation"},
		{"CybersÃ©curitÃ©", "Cybersécurité"},
		{"déjà correct", "déjà correct"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := fixMojibake(tt.in); got != tt.want {
			t.Errorf("fixMojibake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIngestorRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "faq.json", `[{"question": "Q ?", "answer": "A"}]`)
	writeFile(t, dir, "contacts.json", `[{"service": "Scolarité", "email": "s@campus.fr"}]`)

	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	in := NewIngestor(st, nil, dir, semStart, zap.NewNop())
	sum, err := in.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.FAQ != 1 || sum.Contacts != 1 {
		t.Errorf("Summary = %+v, want 1 FAQ and 1 contact", sum)
	}

	counts, err := st.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.FAQ != 1 || counts.Contacts != 1 {
		t.Errorf("Counts = %+v", counts)
	}

	// Re-running replaces, not appends.
	if _, err := in.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	counts, _ = st.Counts(context.Background())
	if counts.FAQ != 1 {
		t.Errorf("Counts.FAQ after second run = %d, want 1", counts.FAQ)
	}
}

func TestIngestorRunMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "faq.json", `{not json`)

	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	in := NewIngestor(st, nil, dir, semStart, zap.NewNop())
	if _, err := in.Run(context.Background()); err == nil {
		t.Error("Run() on malformed FAQ file should fail")
	}
}

func TestSplitChunks(t *testing.T) {
	text := "Première phrase. Deuxième phrase un peu plus longue. Troisième phrase."
	chunks := splitChunks(text, 40)
	if len(chunks) < 2 {
		t.Fatalf("splitChunks() = %d chunks, want a split", len(chunks))
	}
	for _, c := range chunks {
		if len(c) > 40 {
			t.Errorf("chunk %q exceeds the size bound", c)
		}
	}
	whole := splitChunks("court", 40)
	if len(whole) != 1 || whole[0] != "court" {
		t.Errorf("splitChunks(short) = %v", whole)
	}
}
