package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/store"
)

// guideChunkSize bounds one chunk's text. Chunks split on sentence ends so a
// retrieved chunk reads as a coherent passage.
const guideChunkSize = 800

// LoadGuide extracts the campus guide PDF into retrievable text chunks,
// one procedure record per chunk.
func LoadGuide(path string) ([]*models.Procedure, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var out []*models.Procedure
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		for n, chunk := range splitChunks(text, guideChunkSize) {
			out = append(out, &models.Procedure{
				Title:    fmt.Sprintf("Guide du campus (p. %d, section %d)", i, n+1),
				Summary:  chunk,
				Audience: "guide",
				Language: "fr",
			})
		}
	}
	return out, nil
}

// splitChunks cuts text into pieces of at most max bytes, preferring sentence
// boundaries.
func splitChunks(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}
	var chunks []string
	for len(text) > max {
		cut := strings.LastIndex(text[:max], ". ")
		if cut < max/2 {
			cut = strings.LastIndex(text[:max], " ")
		}
		if cut <= 0 {
			cut = max
		} else {
			cut++
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// IngestGuide appends guide chunks to the procedure domain. Unlike the other
// loaders it does not clear the domain: the procedures file owns it, and the
// orchestrator clears it only when the guide is the sole procedure source.
func IngestGuide(ctx context.Context, st store.Store, path string) (int, error) {
	chunks, err := LoadGuide(path)
	if err != nil {
		return 0, err
	}
	for _, p := range chunks {
		if err := st.InsertProcedure(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(chunks), nil
}
