package ingest

import (
	"context"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/store"
)

// LoadFAQ parses a FAQ export. Objects without both a question and an answer
// are skipped.
func LoadFAQ(path string) ([]*models.FAQ, error) {
	v, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	var out []*models.FAQ
	iterDicts(v, func(d map[string]any) {
		q := pickString(d, "question", "q", "question_fr", "demande", "ask")
		a := pickString(d, "answer", "a", "reponse", "réponse", "reponse_fr", "answer_fr", "response")
		if q == "" || a == "" {
			return
		}
		category := pickString(d, "category", "categorie", "cat", "theme", "thème")
		lang := pickString(d, "language", "lang", "locale")
		if lang == "" {
			lang = "fr"
		}
		out = append(out, &models.FAQ{
			Question:     q,
			Answer:       a,
			CategoryID:   categoryID(category),
			CategoryName: category,
			Tags:         pickStrings(d, "tags"),
			Frequency:    pickString(d, "frequency", "frequence", "fréquence"),
			Language:     lang,
		})
	})
	return out, nil
}

// categoryID derives a stable identifier from a display category name.
func categoryID(name string) string {
	return slugify(name)
}

// IngestFAQ replaces the FAQ domain with the file's contents.
func IngestFAQ(ctx context.Context, st store.Store, path string) (int, error) {
	items, err := LoadFAQ(path)
	if err != nil {
		return 0, err
	}
	if err := st.ClearDomain(ctx, models.DomainFAQ); err != nil {
		return 0, err
	}
	for _, f := range items {
		if err := st.InsertFAQ(ctx, f); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}
