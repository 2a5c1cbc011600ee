// Package roster turns the reconstructed text of a roster PDF into student records.
package roster

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/roster-retention/internal/layout"
)

const (
	minIDDigits = 4
	maxIDDigits = 12
)

var (
	// A data row normally starts with its row index: "1 33193783 APELLIDO ...".
	// The id may carry a nationality prefix and thousands separators; the captured span
	// includes the prefix so it never leaks into the name.
	leadingIDPattern = regexp.MustCompile(
		`^(\d{1,4})\s+((?:[VvEe]\s?-?\s?)?(?:\d{1,3}(?:\.\d{3})+|\d{1,3}(?:-\d{3})+|\d{1,3}(?: \d{3})+|\d{4,12}))\b`)

	// Fallback when the row index is missing. Six digits minimum keeps years and
	// page numbers out.
	anyIDPattern = regexp.MustCompile(`\b((?:[VvEe]\s?-?\s?)?(?:\d{1,3}(?:\.\d{3})+|\d{1,3}(?:-\d{3})+|\d{6,12}))\b`)

	rowIndexPattern = regexp.MustCompile(`^\d{1,4}\s+`)

	emailPattern = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)

	trailingPhonePattern = regexp.MustCompile(`(\+?\d[\d\s-]{6,}\d)\s*$`)
	phonePattern         = regexp.MustCompile(`\+?\d[\d\s-]{6,}\d`)

	nonDigitPattern      = regexp.MustCompile(`\D`)
	nonPhoneCharsPattern = regexp.MustCompile(`[^\d+]`)
)

// Match is a field found on a line: the normalized value plus the byte span of the raw
// text it came from.
type Match struct {
	Value string
	Raw   string
	Start int
	End   int
}

func (m Match) overlaps(o Match) bool {
	return m.Start < o.End && o.Start < m.End
}

// ExtractID finds the student identifier on a line. A row index followed by an id wins;
// otherwise the first six to twelve digit token anywhere on the line is used.
func ExtractID(line string) (Match, bool) {
	if loc := leadingIDPattern.FindStringSubmatchIndex(line); loc != nil {
		if m, ok := newIDMatch(line, loc[4], loc[5]); ok {
			return m, true
		}
	}

	for _, loc := range anyIDPattern.FindAllStringSubmatchIndex(line, -1) {
		if m, ok := newIDMatch(line, loc[2], loc[3]); ok {
			return m, true
		}
	}

	return Match{}, false
}

func newIDMatch(line string, start, end int) (Match, bool) {
	raw := line[start:end]
	digits := nonDigitPattern.ReplaceAllString(raw, "")
	if len(digits) < minIDDigits || len(digits) > maxIDDigits {
		return Match{}, false
	}
	return Match{Value: digits, Raw: raw, Start: start, End: end}, true
}

// ExtractEmail finds the first email address on a line.
func ExtractEmail(line string) (Match, bool) {
	loc := emailPattern.FindStringIndex(line)
	if loc == nil {
		return Match{}, false
	}
	raw := line[loc[0]:loc[1]]
	return Match{Value: raw, Raw: raw, Start: loc[0], End: loc[1]}, true
}

// ExtractPhone finds the phone number on a line, looking only past byte offset after.
// A run at the end of the line is preferred; otherwise the last run that does not
// overlap the excluded spans is used.
func ExtractPhone(line string, after int, exclude ...Match) (Match, bool) {
	if after < 0 {
		after = 0
	}
	if after > len(line) {
		return Match{}, false
	}
	tail := line[after:]

	if loc := trailingPhonePattern.FindStringSubmatchIndex(tail); loc != nil {
		m := newPhoneMatch(line, after+loc[2], after+loc[3])
		if !overlapsAny(m, exclude) {
			return m, true
		}
	}

	locs := phonePattern.FindAllStringIndex(tail, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		m := newPhoneMatch(line, after+locs[i][0], after+locs[i][1])
		if !overlapsAny(m, exclude) {
			return m, true
		}
	}

	return Match{}, false
}

func newPhoneMatch(line string, start, end int) Match {
	raw := line[start:end]
	return Match{
		Value: nonPhoneCharsPattern.ReplaceAllString(raw, ""),
		Raw:   raw,
		Start: start,
		End:   end,
	}
}

func overlapsAny(m Match, others []Match) bool {
	for _, o := range others {
		if o.End > o.Start && m.overlaps(o) {
			return true
		}
	}
	return false
}

// ExtractName returns what is left of the line once the given spans are removed.
// The result is empty when nothing letter-like remains.
func ExtractName(line string, spans ...Match) string {
	buf := []byte(line)
	for _, s := range spans {
		if s.End <= s.Start {
			continue
		}
		for i := s.Start; i < s.End && i < len(buf); i++ {
			buf[i] = ' '
		}
	}

	name := layout.CollapseSpaces(string(buf))
	if !strings.ContainsFunc(name, unicode.IsLetter) {
		return ""
	}
	return name
}

// rowIndexSpan returns the span of a leading row index, if any.
func rowIndexSpan(line string) (Match, bool) {
	loc := rowIndexPattern.FindStringIndex(line)
	if loc == nil {
		return Match{}, false
	}
	return Match{Raw: line[loc[0]:loc[1]], Start: loc[0], End: loc[1]}, true
}
