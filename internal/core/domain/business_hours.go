package domain

import "time"

// Business hours defaults.
const (
	DefaultOpenHour  = 8
	DefaultCloseHour = 17

	// BusinessDayBudget is the fixed amount of business time credited for
	// every weekday in a window, independent of OpenHour/CloseHour.
	BusinessDayBudget = 8 * time.Hour
)

// BusinessCalendar defines weekday business hours in a specific timezone.
// All calendar arithmetic happens in Location, never in the host timezone.
type BusinessCalendar struct {
	Location  *time.Location
	OpenHour  int
	CloseHour int
}

// NewBusinessCalendar returns a Monday-Friday calendar open from openHour to
// closeHour in loc. A nil loc means UTC.
func NewBusinessCalendar(loc *time.Location, openHour, closeHour int) BusinessCalendar {
	return BusinessCalendar{
		Location:  loc,
		OpenHour:  openHour,
		CloseHour: closeHour,
	}
}

// DefaultBusinessCalendar returns the 08:00-17:00 weekday calendar in loc.
func DefaultBusinessCalendar(loc *time.Location) BusinessCalendar {
	return NewBusinessCalendar(loc, DefaultOpenHour, DefaultCloseHour)
}

func (c BusinessCalendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// isoWeekday returns 1 for Monday through 7 for Sunday.
func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func isWeekday(t time.Time) bool {
	return isoWeekday(t) <= 5
}

func (c BusinessCalendar) duringHours(t time.Time) bool {
	return t.Hour() >= c.OpenHour && t.Hour() < c.CloseHour
}

func (c BusinessCalendar) atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, c.location())
}

// closeOfLastWeekday moves a weekend instant back to Friday at closing time.
func (c BusinessCalendar) closeOfLastWeekday(t time.Time) time.Time {
	back := isoWeekday(t) - 5
	return c.atHour(t.AddDate(0, 0, -back), c.CloseHour)
}

// Overlap approximates how much of the segment falls inside business hours.
//
// A segment is considered only when one of its endpoints is on a weekday
// and one of its endpoints is inside business hours. The start is then
// moved to Friday close when it falls on a weekend, and to opening time
// when it is before opening. The end is moved to Friday close when it falls
// on a weekend, and to closing time when its hour is past the closing hour.
// Multi-day spans and holidays are not accounted for. The result is never
// negative and never exceeds the segment duration.
func (c BusinessCalendar) Overlap(segment Segment) time.Duration {
	start := segment.Start.In(c.location())
	end := segment.End.In(c.location())

	if !isWeekday(start) && !isWeekday(end) {
		return 0
	}
	if !c.duringHours(start) && !c.duringHours(end) {
		return 0
	}

	if !isWeekday(start) {
		start = c.closeOfLastWeekday(start)
	}
	if start.Hour() < c.OpenHour {
		start = c.atHour(start, c.OpenHour)
	}

	if !isWeekday(end) {
		end = c.closeOfLastWeekday(end)
	}
	if end.Hour() > c.CloseHour {
		end = c.atHour(end, c.CloseHour)
	}

	overlap := end.Sub(start)
	if limit := segment.Duration(); overlap > limit {
		overlap = limit
	}
	if overlap < 0 {
		return 0
	}
	return overlap
}

// BusinessTime credits BusinessDayBudget for every weekday among the
// calendar days from start's day through end's day, both inclusive.
func (c BusinessCalendar) BusinessTime(start, end time.Time) time.Duration {
	if end.Before(start) {
		return 0
	}

	local := start.In(c.location())
	var total time.Duration
	for day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location()); !day.After(end); day = day.AddDate(0, 0, 1) {
		if isWeekday(day) {
			total += BusinessDayBudget
		}
	}
	return total
}
