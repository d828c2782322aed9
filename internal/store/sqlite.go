// Package store provides the SQLite implementation of the Store interface.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, ":memory:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS faq_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		category_id TEXT,
		category_name TEXT,
		tags TEXT,
		frequency TEXT,
		language TEXT DEFAULT 'fr',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS procedures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		summary TEXT,
		steps TEXT,
		audience TEXT,
		language TEXT DEFAULT 'fr',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT,
		category TEXT,
		sub_category TEXT,
		role TEXT,
		email TEXT,
		phone TEXT,
		building TEXT,
		office TEXT,
		hours TEXT,
		programs TEXT,
		specialties TEXT,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS timetable_slots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		program TEXT,
		group_name TEXT,
		subject_name TEXT,
		subject_code TEXT,
		teacher TEXT,
		room TEXT,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_slots_start ON timetable_slots(start_time);

	CREATE TABLE IF NOT EXISTS chat_events (
		id TEXT PRIMARY KEY,
		user_hash TEXT NOT NULL,
		channel TEXT DEFAULT 'web',
		message TEXT NOT NULL,
		language TEXT,
		intent TEXT,
		entities TEXT,
		response TEXT NOT NULL,
		confidence REAL,
		resolved INTEGER DEFAULT 1,
		latency_ms INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_event_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT,
		corrected_answer TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// likeClause builds an OR of case-insensitive substring matches over fields
// for every keyword. Returns an always-false clause when keywords is empty.
func likeClause(fields []string, keywords []string) (string, []any) {
	if len(keywords) == 0 || len(fields) == 0 {
		return "0", nil
	}
	var parts []string
	var args []any
	for _, f := range fields {
		for _, kw := range keywords {
			parts = append(parts, "lower("+f+") LIKE ?")
			args = append(args, "%"+strings.ToLower(kw)+"%")
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// --- FAQ ---

var faqSearchFields = []string{"question", "answer", "category_name", "category_id", "tags"}

// InsertFAQ inserts a FAQ entry, assigning its ID.
func (s *SQLiteStore) InsertFAQ(ctx context.Context, f *models.FAQ) error {
	tagsJSON, err := json.Marshal(f.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO faq_items (question, answer, category_id, category_name, tags, frequency, language)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Question, f.Answer, f.CategoryID, f.CategoryName, string(tagsJSON), f.Frequency, f.Language,
	)
	if err != nil {
		return err
	}
	f.ID, err = res.LastInsertId()
	return err
}

// FAQByExactQuestion returns the FAQ whose question equals the query,
// case-insensitively. ErrNotFound when absent.
func (s *SQLiteStore) FAQByExactQuestion(ctx context.Context, question string) (*models.FAQ, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, question, answer, category_id, category_name, tags, frequency, language
		 FROM faq_items WHERE lower(question) = lower(?) LIMIT 1`, question)
	return scanFAQ(row)
}

// FAQByKeywords returns FAQ entries where any keyword is a substring of any
// searchable field, optionally restricted to a category. Unordered by
// relevance.
func (s *SQLiteStore) FAQByKeywords(ctx context.Context, keywords []string, categoryID string, limit int) ([]*models.FAQ, error) {
	clause, args := likeClause(faqSearchFields, keywords)
	query := `SELECT id, question, answer, category_id, category_name, tags, frequency, language
		 FROM faq_items WHERE ` + clause
	if categoryID != "" {
		query += " AND category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.FAQ
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFAQ(row rowScanner) (*models.FAQ, error) {
	var f models.FAQ
	var tagsJSON sql.NullString
	err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.CategoryID, &f.CategoryName,
		&tagsJSON, &f.Frequency, &f.Language)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &f.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return &f, nil
}

// --- Procedures ---

// InsertProcedure inserts a procedure, assigning its ID.
func (s *SQLiteStore) InsertProcedure(ctx context.Context, p *models.Procedure) error {
	stepsJSON, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO procedures (title, summary, steps, audience, language)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Title, p.Summary, string(stepsJSON), p.Audience, p.Language,
	)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// ProceduresByKeywords searches title and summary.
func (s *SQLiteStore) ProceduresByKeywords(ctx context.Context, keywords []string, limit int) ([]*models.Procedure, error) {
	clause, args := likeClause([]string{"title", "summary"}, keywords)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, summary, steps, audience, language FROM procedures
		 WHERE `+clause+` ORDER BY id LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Procedure
	for rows.Next() {
		var p models.Procedure
		var stepsJSON sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Summary, &stepsJSON, &p.Audience, &p.Language); err != nil {
			return nil, err
		}
		if stepsJSON.Valid && stepsJSON.String != "" {
			if err := json.Unmarshal([]byte(stepsJSON.String), &p.Steps); err != nil {
				return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
			}
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// --- Contacts ---

var contactColumns = `id, full_name, category, sub_category, role, email, phone,
	building, office, hours, programs, specialties, notes`

var contactSearchFields = []string{
	"full_name", "category", "sub_category", "role", "email", "phone",
	"building", "office", "hours", "programs", "specialties", "notes",
}

// InsertContact inserts a contact, assigning its ID.
func (s *SQLiteStore) InsertContact(ctx context.Context, c *models.Contact) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (full_name, category, sub_category, role, email, phone,
			building, office, hours, programs, specialties, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.FullName, c.Category, c.SubCategory, c.Role, c.Email, c.Phone,
		c.Building, c.Office, c.Hours, c.Programs, c.Specialties, c.Notes,
	)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// ContactsByKeywords searches every contact field, then applies the optional
// filter clauses.
func (s *SQLiteStore) ContactsByKeywords(ctx context.Context, keywords []string, filter ContactFilter, limit int) ([]*models.Contact, error) {
	clause, args := likeClause(contactSearchFields, keywords)
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + clause

	if filter.SubCategoryLike != "" {
		query += " AND lower(sub_category) LIKE ?"
		args = append(args, "%"+strings.ToLower(filter.SubCategoryLike)+"%")
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if len(filter.ProgramsLikeAny) > 0 {
		var parts []string
		for _, p := range filter.ProgramsLikeAny {
			parts = append(parts, "lower(programs) LIKE ?")
			args = append(args, "%"+strings.ToLower(p)+"%")
		}
		query += " AND (" + strings.Join(parts, " OR ") + ")"
	}
	query += " ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FirstContactByHint returns the first contact whose sub-category, category,
// or role contains the hint. Matching is accent-insensitive because hints
// arrive folded while directory values keep their accents, and SQLite's
// lower() is ASCII-only.
func (s *SQLiteStore) FirstContactByHint(ctx context.Context, hint string) (*models.Contact, error) {
	folded := nlp.Fold(hint)
	if folded == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		for _, field := range []string{c.SubCategory, c.Category, c.Role} {
			if strings.Contains(nlp.Fold(field), folded) {
				return c, nil
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(&c.ID, &c.FullName, &c.Category, &c.SubCategory, &c.Role,
		&c.Email, &c.Phone, &c.Building, &c.Office, &c.Hours,
		&c.Programs, &c.Specialties, &c.Notes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// --- Timetable ---

// InsertSlot inserts a timetable slot, assigning its ID.
func (s *SQLiteStore) InsertSlot(ctx context.Context, slot *models.TimetableSlot) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO timetable_slots (program, group_name, subject_name, subject_code,
			teacher, room, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		slot.Program, slot.GroupName, slot.SubjectName, slot.SubjectCode,
		slot.Teacher, slot.Room, slot.Start, slot.End,
	)
	if err != nil {
		return err
	}
	slot.ID, err = res.LastInsertId()
	return err
}

// SlotsFiltered returns timetable slots matching the filter, ordered by start
// time.
func (s *SQLiteStore) SlotsFiltered(ctx context.Context, filter SlotFilter, limit int) ([]*models.TimetableSlot, error) {
	query := `SELECT id, program, group_name, subject_name, subject_code, teacher, room,
		start_time, end_time FROM timetable_slots WHERE 1=1`
	var args []any

	if filter.Program != "" {
		query += " AND program = ?"
		args = append(args, filter.Program)
	}
	if filter.GroupName != "" {
		query += " AND group_name = ?"
		args = append(args, filter.GroupName)
	}
	if filter.ProgramLike != "" {
		query += " AND lower(program) LIKE ?"
		args = append(args, "%"+strings.ToLower(filter.ProgramLike)+"%")
	}
	if len(filter.SubjectLikeAny) > 0 {
		var parts []string
		for _, sub := range filter.SubjectLikeAny {
			parts = append(parts, "lower(subject_name) LIKE ?")
			args = append(args, "%"+strings.ToLower(sub)+"%")
		}
		query += " AND (" + strings.Join(parts, " OR ")
		if filter.SubjectCodeLike != "" {
			query += " OR lower(subject_code) LIKE ?"
			args = append(args, "%"+strings.ToLower(filter.SubjectCodeLike)+"%")
		}
		query += ")"
	} else if filter.SubjectCodeLike != "" {
		query += " AND lower(subject_code) LIKE ?"
		args = append(args, "%"+strings.ToLower(filter.SubjectCodeLike)+"%")
	}

	query += " ORDER BY start_time LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TimetableSlot
	for rows.Next() {
		var slot models.TimetableSlot
		if err := rows.Scan(&slot.ID, &slot.Program, &slot.GroupName, &slot.SubjectName,
			&slot.SubjectCode, &slot.Teacher, &slot.Room, &slot.Start, &slot.End); err != nil {
			return nil, err
		}
		out = append(out, &slot)
	}
	return out, rows.Err()
}

// --- Event log and feedback ---

// InsertChatEvent persists one routing decision.
func (s *SQLiteStore) InsertChatEvent(ctx context.Context, e *ChatEvent) error {
	var entitiesJSON []byte
	if e.Entities != nil {
		var err error
		entitiesJSON, err = json.Marshal(e.Entities)
		if err != nil {
			return fmt.Errorf("failed to marshal entities: %w", err)
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_events (id, user_hash, channel, message, language, intent,
			entities, response, confidence, resolved, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserHash, e.Channel, e.Message, e.Language, e.Intent,
		string(entitiesJSON), e.Response, e.Confidence, e.Resolved, e.LatencyMS, e.CreatedAt,
	)
	return err
}

// InsertFeedback persists a user rating.
func (s *SQLiteStore) InsertFeedback(ctx context.Context, f *Feedback) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (chat_event_id, rating, comment, corrected_answer, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.ChatEventID, f.Rating, f.Comment, f.CorrectedAnswer, f.CreatedAt,
	)
	if err != nil {
		return err
	}
	f.ID, err = res.LastInsertId()
	return err
}

// --- Maintenance ---

// Counts returns per-domain record counts.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	tables := []struct {
		table string
		dest  *int64
	}{
		{"faq_items", &c.FAQ},
		{"procedures", &c.Procedures},
		{"contacts", &c.Contacts},
		{"timetable_slots", &c.Slots},
		{"chat_events", &c.Events},
	}
	for _, t := range tables {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dest); err != nil {
			return Counts{}, err
		}
	}
	return c, nil
}

// AllRecords streams every knowledge record, used to rebuild the external
// full-text index.
func (s *SQLiteStore) AllRecords(ctx context.Context) ([]models.KnowledgeRecord, error) {
	var out []models.KnowledgeRecord

	faqs, err := s.allFAQRecords(ctx)
	if err != nil {
		return nil, err
	}
	out = append(out, faqs...)

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, summary, steps, audience, language FROM procedures ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p models.Procedure
		var stepsJSON sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Summary, &stepsJSON, &p.Audience, &p.Language); err != nil {
			rows.Close()
			return nil, err
		}
		if stepsJSON.Valid && stepsJSON.String != "" {
			_ = json.Unmarshal([]byte(stepsJSON.String), &p.Steps)
		}
		out = append(out, models.ProcedureRecord(&p))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, models.ContactRecord(c))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slots, err := s.SlotsFiltered(ctx, SlotFilter{}, 10000)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		out = append(out, models.SlotRecord(slot))
	}
	return out, nil
}

func (s *SQLiteStore) allFAQRecords(ctx context.Context) ([]models.KnowledgeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, category_id, category_name, tags, frequency, language
		 FROM faq_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.KnowledgeRecord
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, models.FAQRecord(f))
	}
	return out, rows.Err()
}

// ClearDomain deletes every record of one domain. Used before re-ingest.
func (s *SQLiteStore) ClearDomain(ctx context.Context, domain models.Domain) error {
	table := map[models.Domain]string{
		models.DomainFAQ:       "faq_items",
		models.DomainProcedure: "procedures",
		models.DomainContact:   "contacts",
		models.DomainTimetable: "timetable_slots",
	}[domain]
	if table == "" {
		return fmt.Errorf("unknown domain: %s", domain)
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
