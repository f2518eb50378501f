package availability

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Branch hours are stored as a single human-readable line, e.g.
// "Lun a Dom 10:00 - 23:00": a day range, the literal "a", and a time range.
var hoursPattern = regexp.MustCompile(`^(\p{L}+)\s+a\s+(\p{L}+)\s+(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})$`)

// Spanish day abbreviations mapped to time.Weekday indices (Sunday = 0).
// Accented and plain spellings are both accepted.
var dayIndex = map[string]int{
	"dom": 0,
	"lun": 1,
	"mar": 2,
	"mié": 3,
	"mie": 3,
	"jue": 4,
	"vie": 5,
	"sáb": 6,
	"sab": 6,
}

// IsOpen reports whether a branch with the given opening-hours line is open
// at the given moment. Any malformed input yields closed; a branch with an
// unreadable schedule must never show as open.
func IsOpen(openingHours string, now time.Time) bool {
	m := hoursPattern.FindStringSubmatch(strings.TrimSpace(openingHours))
	if m == nil {
		return false
	}

	dayStart, ok := dayIndex[strings.ToLower(m[1])]
	if !ok {
		return false
	}
	dayEnd, ok := dayIndex[strings.ToLower(m[2])]
	if !ok {
		return false
	}

	currentDay := int(now.Weekday())

	var dayInRange bool
	if dayStart <= dayEnd {
		dayInRange = currentDay >= dayStart && currentDay <= dayEnd
	} else {
		// Range wraps the week boundary, e.g. "Jue a Dom" covers 4,5,6,0.
		dayInRange = currentDay >= dayStart || currentDay <= dayEnd
	}
	if !dayInRange {
		return false
	}

	openMinutes := atoi(m[3])*60 + atoi(m[4])
	closeMinutes := atoi(m[5])*60 + atoi(m[6])

	// Closing at 00:00 means end of day, not midnight-start.
	if closeMinutes == 0 {
		closeMinutes = 24 * 60
	}

	currentMinutes := now.Hour()*60 + now.Minute()
	return currentMinutes >= openMinutes && currentMinutes < closeMinutes
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s) // regexp guarantees digits
	return n
}

// Calculator evaluates opening hours against the wall clock in the
// storefront's reference timezone.
type Calculator struct {
	loc *time.Location
}

// NewCalculator loads the reference timezone, falling back to the fixed
// Argentina offset when tzdata is unavailable.
func NewCalculator(timezone string) *Calculator {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.FixedZone("-03", -3*60*60)
	}
	return &Calculator{loc: loc}
}

// IsOpenNow evaluates the schedule against the current wall-clock time.
func (c *Calculator) IsOpenNow(openingHours string) bool {
	return IsOpen(openingHours, time.Now().In(c.loc))
}
