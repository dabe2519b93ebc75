package quiz

import "strings"

// Anchor tables. Keys are normalized with normalize before lookup.
var (
	wakeAnchors = map[string]float64{
		"before 6 am": 5.5,
		"before 8 am": 7.0,
		"8-10 am":     9.0,
		"after 10 am": 11.0,
	}

	// Offsets, in hours after waking, of the answer's part of day.
	timeOfDayOffsets = map[string]float64{
		"morning":       0.5,
		"midday":        3.0,
		"afternoon":     6.0,
		"evening":       10.0,
		"late at night": 13.0,
	}

	homeworkOffsets = map[string]float64{
		"right after school": 6.0,
		"early evening":      9.0,
		"after dinner":       11.0,
		"late at night":      13.0,
	}

	schoolStarts = map[string]float64{
		"before 7:30 am": 7.0,
		"7:30-8:00 am":   7.5,
		"8:00-8:30 am":   8.0,
		"8:30-9:00 am":   8.5,
		"after 9 am":     9.0,
	}

	homeworkStarts = map[string]float64{
		"right after school": 15.5,
		"early evening":      17.5,
		"after dinner":       19.0,
		"late at night":      19.5,
	}

	grogginessNudges = map[string]float64{
		"very groggy":   1,
		"alert quickly": -1,
	}

	weekendNudges = map[string]float64{
		"much later": 1,
		"same time":  -1,
	}
)

const (
	defaultWake          = 8.0
	defaultOffset        = 4.0
	defaultSchoolStart   = 8.0
	defaultHomeworkStart = 17.5

	schoolWindowHours = 6.0
	studyWindowHours  = 3.0
	schoolPrepHours   = 1.0
)

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "–", "-")
	return strings.Join(strings.Fields(s), " ")
}

func lookup(table map[string]float64, answer string) (float64, bool) {
	v, ok := table[normalize(answer)]
	return v, ok
}

func lookupOr(table map[string]float64, answer string, def float64) float64 {
	if v, ok := lookup(table, answer); ok {
		return v
	}
	return def
}
