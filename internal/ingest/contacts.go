package ingest

import (
	"context"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
	"github.com/hyperjump/annai/internal/store"
)

// LoadContacts parses a directory export. An entry needs a service plus at
// least one of email or phone to be usable.
func LoadContacts(path string) ([]*models.Contact, error) {
	v, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	var out []*models.Contact
	iterDicts(v, func(d map[string]any) {
		service := pickString(d, "service", "departement", "department", "pole", "pôle", "direction", "sous_categorie", "sub_category")
		email := pickString(d, "email", "mail")
		phone := pickString(d, "phone", "tel", "telephone", "téléphone", "mobile")
		if service == "" || (email == "" && phone == "") {
			return
		}
		out = append(out, &models.Contact{
			FullName:    pickString(d, "name", "nom", "contact", "responsable", "full_name"),
			Category:    pickString(d, "category", "categorie", "catégorie"),
			SubCategory: service,
			Role:        pickString(d, "role", "fonction", "poste"),
			Email:       email,
			Phone:       phone,
			Building:    pickString(d, "location", "lieu", "batiment", "bâtiment", "adresse"),
			Office:      pickString(d, "office", "bureau"),
			Hours:       pickString(d, "hours", "horaires", "horaire"),
			Programs:    pickString(d, "programs", "formations", "promos"),
			Specialties: pickString(d, "specialties", "specialites", "spécialités"),
			Notes:       pickString(d, "notes", "remarques"),
		})
	})
	return out, nil
}

// IngestContacts replaces the contact domain with the file's contents.
func IngestContacts(ctx context.Context, st store.Store, path string) (int, error) {
	items, err := LoadContacts(path)
	if err != nil {
		return 0, err
	}
	if err := st.ClearDomain(ctx, models.DomainContact); err != nil {
		return 0, err
	}
	for _, c := range items {
		if err := st.InsertContact(ctx, c); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

// slugify folds a display name into a lowercase ascii identifier.
func slugify(s string) string {
	folded := nlp.Fold(s)
	out := make([]rune, 0, len(folded))
	for _, r := range folded {
		if r == ' ' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
