package comparison

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/jonathan/roster-retention/internal/types"
)

var digitsPattern = regexp.MustCompile(`\D`)

// Summarize counts dropouts by normalized level and by shift. Levels are ordered by their
// numeric value, shifts by first appearance.
func Summarize(dropouts []types.StudentRecord) types.Breakdown {
	byLevel := countBy(dropouts, func(r types.StudentRecord) string {
		if r.LevelNormalized == "" {
			return types.DefaultLevel
		}
		return r.LevelNormalized
	})
	slices.SortStableFunc(byLevel, func(a, b types.BucketCount) int {
		return levelNumber(a.Name) - levelNumber(b.Name)
	})

	byShift := countBy(dropouts, types.StudentRecord.ShiftOrDefault)

	return types.Breakdown{
		ByLevel:    byLevel,
		ByShift:    byShift,
		WorstShift: worst(byShift),
	}
}

func countBy(records []types.StudentRecord, key func(types.StudentRecord) string) []types.BucketCount {
	buckets := make([]types.BucketCount, 0)
	index := make(map[string]int)
	for _, r := range records {
		k := key(r)
		if i, ok := index[k]; ok {
			buckets[i].Count++
			continue
		}
		index[k] = len(buckets)
		buckets = append(buckets, types.BucketCount{Name: k, Count: 1})
	}
	return buckets
}

// levelNumber reads the digits of a bucket name; names without digits sort as 0.
func levelNumber(name string) int {
	n, err := strconv.Atoi(digitsPattern.ReplaceAllString(name, ""))
	if err != nil {
		return 0
	}
	return n
}

func worst(buckets []types.BucketCount) string {
	name, best := "N/A", 0
	for _, b := range buckets {
		if b.Count > best {
			name, best = b.Name, b.Count
		}
	}
	return name
}
