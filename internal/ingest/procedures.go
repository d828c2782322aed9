package ingest

import (
	"context"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/store"
)

// LoadProcedures parses a procedures export. Only a title is required.
func LoadProcedures(path string) ([]*models.Procedure, error) {
	v, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	var out []*models.Procedure
	iterDicts(v, func(d map[string]any) {
		title := pickString(d, "title", "titre", "intitule", "intitulé", "procedure", "procédure", "nom")
		if title == "" {
			return
		}
		lang := pickString(d, "language", "lang", "locale")
		if lang == "" {
			lang = "fr"
		}
		out = append(out, &models.Procedure{
			Title:    title,
			Summary:  pickString(d, "summary", "resume", "résumé", "description", "objectif"),
			Steps:    pickStrings(d, "steps", "etapes", "étapes", "procedure_steps", "process"),
			Audience: pickString(d, "audience", "public"),
			Language: lang,
		})
	})
	return out, nil
}

// IngestProcedures replaces the procedure domain with the file's contents.
func IngestProcedures(ctx context.Context, st store.Store, path string) (int, error) {
	items, err := LoadProcedures(path)
	if err != nil {
		return 0, err
	}
	if err := st.ClearDomain(ctx, models.DomainProcedure); err != nil {
		return 0, err
	}
	for _, p := range items {
		if err := st.InsertProcedure(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}
