package workouts

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Boundary selects how the end of a calendar day is treated.
type Boundary int

const (
	// BoundaryExclusive: [midnight, next midnight)
	BoundaryExclusive Boundary = iota
	// BoundaryInclusive: [midnight, 23:59:59.999]; an instant in the last sub-millisecond of the day is excluded.
	BoundaryInclusive
)

func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exclusive":
		return BoundaryExclusive, nil
	case "inclusive":
		return BoundaryInclusive, nil
	default:
		return BoundaryExclusive, fmt.Errorf("unknown day boundary: %s", s)
	}
}

func (b Boundary) String() string {
	if b == BoundaryInclusive {
		return "inclusive"
	}
	return "exclusive"
}

type DayRange struct {
	Start    time.Time
	End      time.Time
	Boundary Boundary
}

// NewDayRange returns the calendar day of t, as observed in loc.
func NewDayRange(t time.Time, loc *time.Location, boundary Boundary) DayRange {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	// AddDate keeps DST days right: the day may be 23 or 25 hours long
	nextMidnight := start.AddDate(0, 0, 1)

	end := nextMidnight
	if boundary == BoundaryInclusive {
		end = nextMidnight.Add(-time.Millisecond)
	}

	return DayRange{
		Start:    start,
		End:      end,
		Boundary: boundary,
	}
}

func (r DayRange) Contains(t time.Time) bool {
	if t.Before(r.Start) {
		return false
	}
	if r.Boundary == BoundaryInclusive {
		return !t.After(r.End)
	}
	return t.Before(r.End)
}

func (r DayRange) Inclusive() bool {
	return r.Boundary == BoundaryInclusive
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05.999999999",
}

// ParseDate accepts a calendar date (YYYY-MM-DD), a local date-time without offset,
// or an RFC 3339 timestamp, and returns it in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// DurationMinutes is the workout length in whole minutes, rounded to nearest.
func DurationMinutes(startedAt, completedAt time.Time) int {
	return minutesFromMillis(float64(completedAt.Sub(startedAt).Milliseconds()))
}

func minutesFromMillis(ms float64) int {
	return int(math.Round(ms / 60000))
}
