// Package search provides knowledge retrieval: an optional external full-text
// index plus the per-domain store search tiers with signal reranking.
package search

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/annai/internal/models"
)

// titleBoost multiplies the score contribution from matches in the title
// field, mirroring a title^4 multi-field match.
const titleBoost = 4.0

// KBDoc is the indexed form of a knowledge record.
type KBDoc struct {
	DocType string `json:"doc_type"`
	DBID    int64  `json:"db_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Hit is a single full-text search result.
type Hit struct {
	DocType string
	DBID    int64
	Title   string
	Content string
	Score   float64
}

// KBIndex defines full-text operations over the knowledge base.
type KBIndex interface {
	Index(ctx context.Context, id string, doc *KBDoc) error
	Search(ctx context.Context, query string, limit int, docTypes []string) ([]*Hit, error)
	Rebuild(ctx context.Context, records []models.KnowledgeRecord) error
	DocCount() (uint64, error)
	Close() error
}

// BleveKB implements KBIndex using Bleve.
type BleveKB struct {
	index bleve.Index
}

// NewBleveKB creates or opens a Bleve index at path. An existing index is
// reused; remove the directory to force a rebuild after a mapping change.
func NewBleveKB(path string) (*BleveKB, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming): French stemmers
	// mangle short administrative vocabulary and the queries are already
	// keyword-like.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("doc_type", keywordFieldMapping)
	im.AddDocumentMapping("kb", docMapping)
	im.DefaultType = "kb"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open KB index: %w", openErr)
		}
		return &BleveKB{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create KB index: %w", err)
	}
	return &BleveKB{index: index}, nil
}

// Index indexes one document by id.
func (b *BleveKB) Index(ctx context.Context, id string, doc *KBDoc) error {
	return b.index.Index(id, doc)
}

// Search runs a boosted title+content match and returns up to limit hits,
// optionally restricted to the given doc types.
func (b *BleveKB) Search(ctx context.Context, query string, limit int, docTypes []string) ([]*Hit, error) {
	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("title")
	titleQuery.SetBoost(titleBoost)
	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")

	var q blevequery.Query = bleve.NewDisjunctionQuery(titleQuery, contentQuery)
	if len(docTypes) > 0 {
		typeDisj := bleve.NewDisjunctionQuery()
		for _, dt := range docTypes {
			tq := bleve.NewTermQuery(dt)
			tq.SetField("doc_type")
			typeDisj.AddQuery(tq)
		}
		q = bleve.NewConjunctionQuery(q, typeDisj)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"*"}

	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("KB search failed: %w", err)
	}

	out := make([]*Hit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		h := &Hit{Score: hit.Score}
		if v, ok := hit.Fields["doc_type"].(string); ok {
			h.DocType = v
		}
		if v, ok := hit.Fields["db_id"].(float64); ok {
			h.DBID = int64(v)
		}
		if v, ok := hit.Fields["title"].(string); ok {
			h.Title = v
		}
		if v, ok := hit.Fields["content"].(string); ok {
			h.Content = v
		}
		out = append(out, h)
	}
	return out, nil
}

// Rebuild replaces the index contents with the given records in one batch.
func (b *BleveKB) Rebuild(ctx context.Context, records []models.KnowledgeRecord) error {
	// Delete existing docs first so removed records do not linger.
	match := bleve.NewMatchAllQuery()
	req := bleve.NewSearchRequest(match)
	req.Size = 100000
	existing, err := b.index.Search(req)
	if err != nil {
		return fmt.Errorf("failed to list existing docs: %w", err)
	}
	batch := b.index.NewBatch()
	for _, hit := range existing.Hits {
		batch.Delete(hit.ID)
	}
	for _, r := range records {
		doc := &KBDoc{
			DocType: string(r.Domain),
			DBID:    r.ID(),
			Title:   r.Title(),
			Content: r.PrimaryText() + "\n" + r.SecondaryText(),
		}
		if err := batch.Index(fmt.Sprintf("%s-%d", r.Domain, r.ID()), doc); err != nil {
			return fmt.Errorf("failed to batch-index record: %w", err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply index batch: %w", err)
	}
	return nil
}

// DocCount returns the number of indexed documents.
func (b *BleveKB) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveKB) Close() error {
	return b.index.Close()
}
