package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/search"
	"github.com/hyperjump/annai/internal/store"
)

// Source file names probed in the data directory, legacy export names
// included.
var (
	faqFiles       = []string{"faq.json", "faq_complete.json"}
	contactFiles   = []string{"contacts.json", "annuaire_contacts.json"}
	procedureFiles = []string{"procedures.json", "procedures_esic.json"}
	timetableFiles = []string{"timetable.csv", "timetable.xlsx", "emploi_du_temps.csv"}
	guideFiles     = []string{"guide.pdf", "guide_campus.pdf"}
)

// Summary reports how many records each loader produced.
type Summary struct {
	FAQ         int
	Contacts    int
	Procedures  int
	Slots       int
	GuideChunks int
}

// Ingestor loads the data directory into the store and keeps the full-text
// index in sync.
type Ingestor struct {
	store         store.Store
	kb            search.KBIndex
	dataDir       string
	semesterStart time.Time
	logger        *zap.Logger
}

// NewIngestor creates an ingestor. kb may be nil when no external index is
// configured.
func NewIngestor(st store.Store, kb search.KBIndex, dataDir string, semesterStart time.Time, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		store:         st,
		kb:            kb,
		dataDir:       dataDir,
		semesterStart: semesterStart,
		logger:        logger,
	}
}

// Run ingests every known source file present in the data directory, then
// rebuilds the full-text index. Missing files are skipped; a malformed file
// fails the run.
func (in *Ingestor) Run(ctx context.Context) (Summary, error) {
	var s Summary
	var err error

	if path := in.firstExisting(faqFiles); path != "" {
		if s.FAQ, err = IngestFAQ(ctx, in.store, path); err != nil {
			return s, fmt.Errorf("FAQ ingest failed: %w", err)
		}
		in.logger.Info("ingested FAQ", zap.Int("records", s.FAQ), zap.String("file", path))
	}
	if path := in.firstExisting(contactFiles); path != "" {
		if s.Contacts, err = IngestContacts(ctx, in.store, path); err != nil {
			return s, fmt.Errorf("contact ingest failed: %w", err)
		}
		in.logger.Info("ingested contacts", zap.Int("records", s.Contacts), zap.String("file", path))
	}
	procPath := in.firstExisting(procedureFiles)
	if procPath != "" {
		if s.Procedures, err = IngestProcedures(ctx, in.store, procPath); err != nil {
			return s, fmt.Errorf("procedure ingest failed: %w", err)
		}
		in.logger.Info("ingested procedures", zap.Int("records", s.Procedures), zap.String("file", procPath))
	}
	if path := in.firstExisting(guideFiles); path != "" {
		// The guide appends to the procedure domain. When it is the only
		// procedure source, clear the domain here so repeated runs do not
		// stack duplicate chunks.
		if procPath == "" {
			if err := in.store.ClearDomain(ctx, models.DomainProcedure); err != nil {
				return s, err
			}
		}
		if s.GuideChunks, err = IngestGuide(ctx, in.store, path); err != nil {
			return s, fmt.Errorf("guide ingest failed: %w", err)
		}
		in.logger.Info("ingested campus guide", zap.Int("chunks", s.GuideChunks), zap.String("file", path))
	}
	if path := in.firstExisting(timetableFiles); path != "" {
		if s.Slots, err = IngestTimetable(ctx, in.store, path, in.semesterStart); err != nil {
			return s, fmt.Errorf("timetable ingest failed: %w", err)
		}
		in.logger.Info("ingested timetable", zap.Int("slots", s.Slots), zap.String("file", path))
	}

	if err := in.Reindex(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Reindex rebuilds the full-text index from the store.
func (in *Ingestor) Reindex(ctx context.Context) error {
	if in.kb == nil {
		return nil
	}
	records, err := in.store.AllRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records for reindex: %w", err)
	}
	if err := in.kb.Rebuild(ctx, records); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	in.logger.Info("rebuilt full-text index", zap.Int("records", len(records)))
	return nil
}

func (in *Ingestor) firstExisting(names []string) string {
	for _, name := range names {
		path := filepath.Join(in.dataDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
