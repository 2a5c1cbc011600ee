package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/roster-retention/internal/layout"
	"github.com/jonathan/roster-retention/internal/types"
)

// ScheduleBlocks is the catalog of known class time blocks, spelled the way reports print them.
var ScheduleBlocks = [...]string{
	"8:30 AM - 10:00 AM",
	"10:30 AM - 12:00 PM",
	"1:00 PM - 2:30 PM",
	"2:45 PM - 4:15 PM",
	"4:30 PM - 6:00 PM",
	"6:15 PM - 7:45 PM",
	"8:00 AM - 10:40 AM",
	"10:50 AM - 1:30 PM",
	"2:30 PM - 5:10 PM",
}

var (
	levelNumberPattern = regexp.MustCompile(`\d{1,2}`)

	timeRangePattern = regexp.MustCompile(
		`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)?\s*(?:A|TO|-|–|—)\s*(\d{1,2}):(\d{2})\s*(AM|PM)`)

	// "8:30 a. m." and "8:30 p.m." as printed by Spanish locale reports.
	dottedMeridiemPattern = regexp.MustCompile(`(\d{1,2}:\d{2})\s*([AaPp])\.\s?[Mm]\.?`)
)

// NormalizeLevel renders the first one or two digit number of a level as "L" plus two
// digits, e.g. "Nivel 9" becomes "L09".
func NormalizeLevel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	m := levelNumberPattern.FindString(trimmed)
	if m == "" {
		if trimmed == "" {
			return types.DefaultLevel
		}
		return trimmed
	}
	n, _ := strconv.Atoi(m)
	return fmt.Sprintf("L%02d", n)
}

// NormalizeSchedule reduces a schedule header value to a canonical "H:MM AM - H:MM PM"
// block, using the catalog spelling when one matches.
func NormalizeSchedule(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return types.DefaultSchedule
	}

	// "TUESDAY TO FRIDAY / 8:30 A 10:00 AM" keeps only the time part.
	afterSlash := raw
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		afterSlash = raw[i+1:]
	}
	cleaned := layout.CollapseSpaces(dottedMeridiemPattern.ReplaceAllString(afterSlash, "$1 ${2}M"))

	m := timeRangePattern.FindStringSubmatch(cleaned)
	if m == nil {
		if block, ok := lookupBlock(cleaned); ok {
			return block
		}
		return cleaned
	}

	endMer := strings.ToUpper(m[6])
	startMer := strings.ToUpper(m[3])
	if startMer == "" {
		startMer = endMer
	}
	candidate := fmt.Sprintf("%s %s - %s %s", clockTime(m[1], m[2]), startMer, clockTime(m[4], m[5]), endMer)

	if block, ok := lookupBlock(candidate); ok {
		return block
	}
	return candidate
}

func clockTime(hour, minute string) string {
	h, err := strconv.Atoi(hour)
	if err != nil {
		return hour + ":" + minute
	}
	return fmt.Sprintf("%d:%s", h, minute)
}

func lookupBlock(s string) (string, bool) {
	key := blockKey(s)
	for _, b := range ScheduleBlocks {
		if blockKey(b) == key {
			return b, true
		}
	}
	return "", false
}

// blockKey compares schedule strings ignoring case, whitespace and dash style.
func blockKey(s string) string {
	s = strings.ToUpper(s)
	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)
	return strings.Join(strings.Fields(s), "")
}

// NormalizeCategory maps a category header value, or failing that the source file name,
// to one of Adultos, Niños or Jóvenes.
func NormalizeCategory(raw, sourceName string) string {
	src := foldUpper(raw + " " + sourceName)
	switch {
	case strings.Contains(src, "ADULT"):
		return "Adultos"
	case strings.Contains(src, "KIDS"), strings.Contains(src, "NIN"):
		return "Niños"
	case strings.Contains(src, "YOUNG"), strings.Contains(src, "JOV"), strings.Contains(src, "TEEN"):
		return "Jóvenes"
	}
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return types.DefaultCategory
}

// foldUpper upper-cases s and strips diacritics, so "Niños" and "NINOS" compare equal.
func foldUpper(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}
