// Package models defines the core data structures for utterances, knowledge
// records, and routing decisions.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Domain identifies one of the knowledge domains.
type Domain string

const (
	DomainFAQ       Domain = "faq"
	DomainProcedure Domain = "procedure"
	DomainContact   Domain = "contacts"
	DomainTimetable Domain = "timetable"
)

// FAQ is a frequently-asked-question entry.
type FAQ struct {
	ID           int64    `json:"id" db:"id"`
	Question     string   `json:"question" db:"question"`
	Answer       string   `json:"answer" db:"answer"`
	CategoryID   string   `json:"category_id" db:"category_id"`
	CategoryName string   `json:"category_name" db:"category_name"`
	Tags         []string `json:"tags,omitempty" db:"tags"`
	Frequency    string   `json:"frequency,omitempty" db:"frequency"`
	Language     string   `json:"language,omitempty" db:"language"`
}

// Procedure is an administrative procedure (inscription, bourse, etc.).
type Procedure struct {
	ID       int64    `json:"id" db:"id"`
	Title    string   `json:"title" db:"title"`
	Summary  string   `json:"summary" db:"summary"`
	Steps    []string `json:"steps,omitempty" db:"steps"`
	Audience string   `json:"audience,omitempty" db:"audience"`
	Language string   `json:"language,omitempty" db:"language"`
}

// Contact is a directory entry: a person or a campus service.
type Contact struct {
	ID          int64  `json:"id" db:"id"`
	FullName    string `json:"full_name" db:"full_name"`
	Category    string `json:"category" db:"category"`
	SubCategory string `json:"sub_category" db:"sub_category"`
	Role        string `json:"role" db:"role"`
	Email       string `json:"email" db:"email"`
	Phone       string `json:"phone" db:"phone"`
	Building    string `json:"building" db:"building"`
	Office      string `json:"office" db:"office"`
	Hours       string `json:"hours" db:"hours"`
	Programs    string `json:"programs" db:"programs"`
	Specialties string `json:"specialties" db:"specialties"`
	Notes       string `json:"notes" db:"notes"`
}

// TimetableSlot is one scheduled course session.
type TimetableSlot struct {
	ID          int64     `json:"id" db:"id"`
	Program     string    `json:"program" db:"program"`
	GroupName   string    `json:"group_name" db:"group_name"`
	SubjectName string    `json:"subject_name" db:"subject_name"`
	SubjectCode string    `json:"subject_code" db:"subject_code"`
	Teacher     string    `json:"teacher" db:"teacher"`
	Room        string    `json:"room" db:"room"`
	Start       time.Time `json:"start" db:"start_time"`
	End         time.Time `json:"end" db:"end_time"`
}

// KnowledgeRecord is a tagged union over the four knowledge domains. Exactly
// one of the pointers matching Domain is non-nil.
type KnowledgeRecord struct {
	Domain    Domain
	FAQ       *FAQ
	Procedure *Procedure
	Contact   *Contact
	Slot      *TimetableSlot
}

// ID returns the stable identifier of the underlying record.
func (r KnowledgeRecord) ID() int64 {
	switch r.Domain {
	case DomainFAQ:
		return r.FAQ.ID
	case DomainProcedure:
		return r.Procedure.ID
	case DomainContact:
		return r.Contact.ID
	case DomainTimetable:
		return r.Slot.ID
	}
	return 0
}

// Title returns a human-readable label for the record.
func (r KnowledgeRecord) Title() string {
	switch r.Domain {
	case DomainFAQ:
		return r.FAQ.Question
	case DomainProcedure:
		return r.Procedure.Title
	case DomainContact:
		if r.Contact.FullName != "" {
			return r.Contact.FullName
		}
		if r.Contact.SubCategory != "" {
			return r.Contact.SubCategory
		}
		return r.Contact.Category
	case DomainTimetable:
		return r.Slot.SubjectName
	}
	return ""
}

// PrimaryText is the main searchable field: keyword hits here score higher
// than hits in SecondaryText during reranking.
func (r KnowledgeRecord) PrimaryText() string {
	switch r.Domain {
	case DomainFAQ:
		return r.FAQ.Question
	case DomainProcedure:
		return r.Procedure.Title
	case DomainContact:
		return r.Contact.FullName + " " + r.Contact.SubCategory + " " + r.Contact.Role
	case DomainTimetable:
		return r.Slot.SubjectName
	}
	return ""
}

// SecondaryText is the remaining searchable content.
func (r KnowledgeRecord) SecondaryText() string {
	switch r.Domain {
	case DomainFAQ:
		return r.FAQ.Answer
	case DomainProcedure:
		return r.Procedure.Summary
	case DomainContact:
		c := r.Contact
		return strings.Join([]string{c.Category, c.Building, c.Office, c.Hours, c.Programs, c.Specialties, c.Notes}, " ")
	case DomainTimetable:
		s := r.Slot
		return strings.Join([]string{s.SubjectCode, s.Teacher, s.Room, s.Program, s.GroupName}, " ")
	}
	return ""
}

// SearchText concatenates every searchable field. Signal detection runs over
// this text so that query and candidate signals are directly comparable.
func (r KnowledgeRecord) SearchText() string {
	switch r.Domain {
	case DomainFAQ:
		f := r.FAQ
		return strings.Join([]string{f.Question, f.Answer, strings.Join(f.Tags, " "), f.CategoryName, f.CategoryID}, " ")
	default:
		return r.PrimaryText() + " " + r.SecondaryText()
	}
}

// Source renders the record as a response source descriptor.
func (r KnowledgeRecord) Source() Source {
	return Source{Type: string(r.Domain), ID: r.ID(), Title: r.Title()}
}

// FAQRecord wraps a FAQ entry as a KnowledgeRecord.
func FAQRecord(f *FAQ) KnowledgeRecord {
	return KnowledgeRecord{Domain: DomainFAQ, FAQ: f}
}

// ProcedureRecord wraps a procedure as a KnowledgeRecord.
func ProcedureRecord(p *Procedure) KnowledgeRecord {
	return KnowledgeRecord{Domain: DomainProcedure, Procedure: p}
}

// ContactRecord wraps a contact as a KnowledgeRecord.
func ContactRecord(c *Contact) KnowledgeRecord {
	return KnowledgeRecord{Domain: DomainContact, Contact: c}
}

// SlotRecord wraps a timetable slot as a KnowledgeRecord.
func SlotRecord(s *TimetableSlot) KnowledgeRecord {
	return KnowledgeRecord{Domain: DomainTimetable, Slot: s}
}

// FormatSlot renders one timetable slot as a display line.
func FormatSlot(s *TimetableSlot) string {
	line := fmt.Sprintf("%s — %s %s-%s",
		s.SubjectName,
		s.Start.Format("Monday 02/01"),
		s.Start.Format("15:04"),
		s.End.Format("15:04"))
	if s.Room != "" {
		line += " (salle " + s.Room + ")"
	}
	if s.Teacher != "" {
		line += " — " + s.Teacher
	}
	return line
}
