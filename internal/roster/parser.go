package roster

import (
	"regexp"
	"strings"

	"github.com/jonathan/roster-retention/internal/layout"
	"github.com/jonathan/roster-retention/internal/types"
)

// Header labels may share one reconstructed row, e.g. "Nivel: LEVEL 9 Horario: 8:30 A 10:00 AM".
var headerLabelPattern = regexp.MustCompile(`(?i)\b(categor[ií]a|nivel|horario)\s*:`)

// DefaultMetadata is the section metadata in effect before any header line.
func DefaultMetadata(sourceName string) types.SectionMetadata {
	return types.SectionMetadata{
		Category:        NormalizeCategory("", sourceName),
		Level:           types.DefaultLevel,
		LevelNormalized: types.DefaultLevel,
		Schedule:        types.DefaultSchedule,
		ScheduleBlock:   types.DefaultSchedule,
	}
}

// Parse walks the document text line by line and returns its student records in
// encounter order. Records repeating an id already seen are dropped.
func Parse(text, sourceName string) []types.StudentRecord {
	meta := DefaultMetadata(sourceName)
	records := make([]types.StudentRecord, 0)
	seen := make(map[string]struct{})

	for _, line := range SplitLines(text) {
		var rec *types.StudentRecord
		meta, rec = Step(meta, line, sourceName)
		if rec == nil {
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, *rec)
	}

	return records
}

// SplitLines splits document text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = layout.CollapseSpaces(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Step applies one line to the running metadata. A header line returns updated metadata
// and no record; a data row returns the metadata unchanged and the parsed record.
func Step(meta types.SectionMetadata, line, sourceName string) (types.SectionMetadata, *types.StudentRecord) {
	line = layout.CollapseSpaces(line)
	if line == "" {
		return meta, nil
	}

	if next, ok := applyHeader(meta, line, sourceName); ok {
		return next, nil
	}

	rec, ok := ParseLine(line, meta)
	if !ok {
		return meta, nil
	}
	return meta, &rec
}

func applyHeader(meta types.SectionMetadata, line, sourceName string) (types.SectionMetadata, bool) {
	locs := headerLabelPattern.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 || locs[0][0] != 0 {
		return meta, false
	}

	for i, loc := range locs {
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		label := strings.ToUpper(line[loc[2]:loc[3]])
		value := strings.TrimSpace(line[loc[1]:end])

		switch {
		case strings.HasPrefix(label, "CATEGOR"):
			meta.CategoryRaw = value
			meta.Category = NormalizeCategory(value, sourceName)
		case label == "NIVEL":
			meta.Level = orDefault(value, types.DefaultLevel)
			meta.LevelNormalized = NormalizeLevel(value)
		case label == "HORARIO":
			meta.Schedule = orDefault(value, types.DefaultSchedule)
			meta.ScheduleBlock = NormalizeSchedule(value)
		}
	}
	return meta, true
}

// IsTableHeader reports whether a line is the column header row of the roster table.
func IsTableHeader(line string) bool {
	up := strings.ToUpper(line)
	return strings.Contains(up, "APELLIDOS") && strings.Contains(up, "EMAIL")
}

// ParseLine extracts a student record from one data row. It reports false for lines that
// are not data rows: no identifier, or nothing left for the name.
func ParseLine(line string, meta types.SectionMetadata) (types.StudentRecord, bool) {
	s := layout.CollapseSpaces(line)
	if s == "" || IsTableHeader(s) {
		return types.StudentRecord{}, false
	}

	id, ok := ExtractID(s)
	if !ok {
		return types.StudentRecord{}, false
	}

	spans := []Match{id}
	if idx, ok := rowIndexSpan(s); ok && !idx.overlaps(id) {
		spans = append(spans, idx)
	}

	email, hasEmail := ExtractEmail(s)
	if hasEmail {
		spans = append(spans, email)
	}

	phone, hasPhone := ExtractPhone(s, id.End, email)
	if hasPhone {
		spans = append(spans, phone)
	}

	name := ExtractName(s, spans...)
	if name == "" {
		return types.StudentRecord{}, false
	}

	return types.StudentRecord{
		ID:              id.Value,
		Name:            name,
		Email:           email.Value,
		Phone:           phone.Value,
		Category:        orDefault(meta.Category, types.DefaultCategory),
		CategoryRaw:     meta.CategoryRaw,
		Level:           orDefault(meta.Level, types.DefaultLevel),
		LevelNormalized: orDefault(meta.LevelNormalized, types.DefaultLevel),
		Schedule:        orDefault(meta.Schedule, types.DefaultSchedule),
		ScheduleBlock:   orDefault(meta.ScheduleBlock, types.DefaultSchedule),
		Shift:           InferShift(meta.ScheduleBlock, meta.Schedule),
	}, true
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
