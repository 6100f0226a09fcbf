package calendar

import (
	"fmt"
	"time"
)

// Named views supported by the board.
const (
	ViewDay   = "day"
	ViewWeek  = "week"
	ViewMonth = "month"
)

// Window is the half-open-ish time range a fetch queries.
type Window struct {
	Min time.Time
	Max time.Time
}

// ResolveWindow turns either a named view or an explicit date pair into a
// concrete range, computed from now in the given location.
//
// day: local midnight to end of day; week: Sunday to Saturday; month: the
// calendar month. An explicit pair runs from the start date's local
// midnight to the day after the end date at 04:00 UTC, which covers the
// whole end day for UTC-3/-4 operators regardless of DST.
func ResolveWindow(view, start, end string, now time.Time, loc *time.Location) (Window, error) {
	if start != "" && end != "" {
		minDay, err := time.ParseInLocation("2006-01-02", start, loc)
		if err != nil {
			return Window{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		maxDay, err := time.Parse("2006-01-02", end)
		if err != nil {
			return Window{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		return Window{
			Min: minDay,
			Max: time.Date(maxDay.Year(), maxDay.Month(), maxDay.Day()+1, 4, 0, 0, 0, time.UTC),
		}, nil
	}

	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch view {
	case ViewWeek:
		sunday := midnight.AddDate(0, 0, -int(midnight.Weekday()))
		return Window{Min: sunday, Max: endOfDay(sunday.AddDate(0, 0, 6))}, nil
	case ViewMonth:
		first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		last := first.AddDate(0, 1, -1)
		return Window{Min: first, Max: endOfDay(last)}, nil
	case ViewDay, "":
		return Window{Min: midnight, Max: endOfDay(midnight)}, nil
	default:
		return Window{}, fmt.Errorf("unknown view %q", view)
	}
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
}
