package roster

import (
	"regexp"
	"strings"

	"github.com/jonathan/roster-retention/internal/types"
)

// Checked in order; the first bucket that matches wins.
var shiftRules = []struct {
	shift   string
	pattern *regexp.Regexp
}{
	{types.ShiftMorning, regexp.MustCompile(`(?:^|\D)(?:1[0-2]|0?\d):\d{2}\s*AM|MANANA`)},
	{types.ShiftAfternoon, regexp.MustCompile(`(?:^|\D)(?:12|0?[1-3]):\d{2}\s*PM|TARDE`)},
	{types.ShiftEvening, regexp.MustCompile(`(?:^|\D)0?4:30\s*PM|VESPERTIN`)},
	{types.ShiftNight, regexp.MustCompile(`NOCHE|PM`)},
}

// InferShift buckets a schedule into a time of day. The normalized block is used when
// present, otherwise the raw header value.
func InferShift(block, raw string) string {
	src := block
	if strings.TrimSpace(src) == "" || src == types.DefaultSchedule {
		src = raw
	}
	src = foldUpper(src)

	for _, rule := range shiftRules {
		if rule.pattern.MatchString(src) {
			return rule.shift
		}
	}
	return types.ShiftOther
}
