package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/store"
)

// csvBannerLines is the number of export banner lines before the header row.
const csvBannerLines = 2

var weekdaysFR = map[string]int{
	"lundi":    0,
	"mardi":    1,
	"mercredi": 2,
	"jeudi":    3,
	"vendredi": 4,
	"samedi":   5,
	"dimanche": 6,
}

// fixMojibake repairs strings whose UTF-8 bytes were decoded as latin-1
// ("Introduction Ã  la Programmation"). A string that does not fit latin-1
// or whose recovered bytes are not valid UTF-8 is returned unchanged.
func fixMojibake(s string) string {
	bytes := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		bytes = append(bytes, byte(r))
	}
	if utf8.Valid(bytes) {
		return string(bytes)
	}
	return s
}

// slotTime anchors a weekday name and an HH:MM string to the semester start
// week. Timetable exports describe a repeating week, not dated events.
func slotTime(semesterStart time.Time, weekday, hhmm string) (time.Time, error) {
	idx, ok := weekdaysFR[strings.ToLower(strings.TrimSpace(weekday))]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown weekday %q", weekday)
	}
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", hhmm, err)
	}
	day := semesterStart.AddDate(0, 0, idx)
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, semesterStart.Location()), nil
}

// cleanCSVLine strips the stray semicolons some exports wrap around rows.
func cleanCSVLine(line string) string {
	line = strings.TrimRight(line, "\r\n")
	line = strings.TrimRight(line, ";")
	line = strings.TrimLeft(line, ";")
	return line
}

// LoadTimetableCSV parses a weekly timetable export. The first two lines are
// an export banner; the third is the header.
func LoadTimetableCSV(path string, semesterStart time.Time) ([]*models.TimetableSlot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	rawLines := strings.Split(string(data), "\n")
	if len(rawLines) <= csvBannerLines {
		return nil, fmt.Errorf("%s: too short for a timetable export", path)
	}
	lines := make([]string, 0, len(rawLines)-csvBannerLines)
	for _, l := range rawLines[csvBannerLines:] {
		if l = cleanCSVLine(l); l != "" {
			lines = append(lines, l)
		}
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	var out []*models.TimetableSlot
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[strings.TrimSpace(h)] = fixMojibake(strings.TrimSpace(rec[i]))
			}
		}
		slot, err := slotFromRow(row, semesterStart)
		if err != nil || slot == nil {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// slotFromRow builds one slot from a header-keyed row. Rows without a
// formation are filler and skipped.
func slotFromRow(row map[string]string, semesterStart time.Time) (*models.TimetableSlot, error) {
	if row["formation"] == "" {
		return nil, nil
	}
	start, err := slotTime(semesterStart, row["jour"], row["heure_debut"])
	if err != nil {
		return nil, err
	}
	end, err := slotTime(semesterStart, row["jour"], row["heure_fin"])
	if err != nil {
		return nil, err
	}

	roomParts := make([]string, 0, 3)
	for _, p := range []string{row["salle_nom"], row["salle_code"], row["batiment"]} {
		if p != "" {
			roomParts = append(roomParts, p)
		}
	}

	return &models.TimetableSlot{
		Program:     row["formation"],
		GroupName:   row["groupe"],
		SubjectName: row["matiere_nom"],
		SubjectCode: row["matiere_code"],
		Teacher:     row["enseignant_nom"],
		Room:        strings.Join(roomParts, " "),
		Start:       start,
		End:         end,
	}, nil
}

// LoadTimetableXLSX parses the spreadsheet variant of the same export: one
// sheet, header on the first row, same column names as the CSV.
func LoadTimetableXLSX(path string, semesterStart time.Time) ([]*models.TimetableSlot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	var out []*models.TimetableSlot
	for _, rec := range rows[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[strings.TrimSpace(h)] = strings.TrimSpace(rec[i])
			}
		}
		slot, err := slotFromRow(row, semesterStart)
		if err != nil || slot == nil {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// IngestTimetable replaces the timetable domain from a CSV or XLSX export.
func IngestTimetable(ctx context.Context, st store.Store, path string, semesterStart time.Time) (int, error) {
	var (
		slots []*models.TimetableSlot
		err   error
	)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		slots, err = LoadTimetableXLSX(path, semesterStart)
	} else {
		slots, err = LoadTimetableCSV(path, semesterStart)
	}
	if err != nil {
		return 0, err
	}
	if err := st.ClearDomain(ctx, models.DomainTimetable); err != nil {
		return 0, err
	}
	for _, s := range slots {
		if err := st.InsertSlot(ctx, s); err != nil {
			return 0, err
		}
	}
	return len(slots), nil
}
