package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summarize aggregates a timeline built for [start, end).
//
// TotalTime is measured against the requested end even when the timeline
// was truncated at the current time. Percentages are left invalid when
// their denominator is not positive, and the business percentage is also
// left invalid when no business time was spent online.
func Summarize(segments []Segment, start, end time.Time, calendar BusinessCalendar) PresenceStatistics {
	stats := PresenceStatistics{
		Segments:  segments,
		TotalTime: end.Sub(start),
	}

	for _, segment := range segments {
		if segment.Count <= 0 {
			continue
		}
		stats.TotalTimeOnline += segment.Duration()
		stats.TotalTimeOnlineBusiness += calendar.Overlap(segment)
	}

	if stats.TotalTime > 0 {
		stats.PercentOnline = percentOf(stats.TotalTimeOnline, stats.TotalTime)
	}

	stats.BusinessTime = calendar.BusinessTime(start, end)
	if stats.TotalTimeOnlineBusiness > 0 && stats.BusinessTime > 0 {
		stats.PercentOnlineBusiness = percentOf(stats.TotalTimeOnlineBusiness, stats.BusinessTime)
	}

	return stats
}

// percentOf returns part/whole*100 rounded half away from zero to two places.
func percentOf(part, whole time.Duration) decimal.NullDecimal {
	value := decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(hundred).
		Round(2)
	return decimal.NullDecimal{Decimal: value, Valid: true}
}
