package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/presence-stats/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday; 2024-01-06 and 2024-01-07 are a weekend.
func TestBusinessCalendar_Overlap(t *testing.T) {
	calendar := domain.DefaultBusinessCalendar(time.UTC)

	tests := []struct {
		name     string
		start    string
		end      string
		expected time.Duration
	}{
		{"inside business hours", "2024-01-01T09:00", "2024-01-01T16:00", 7 * time.Hour},
		{"starts before opening", "2024-01-01T06:00", "2024-01-01T12:00", 4 * time.Hour},
		{"ends after closing hour", "2024-01-01T10:00", "2024-01-01T20:00", 7 * time.Hour},
		{"end inside closing hour is kept", "2024-01-01T16:30", "2024-01-01T17:45", 75 * time.Minute},
		{"evening only", "2024-01-01T18:00", "2024-01-01T20:00", 0},
		{"early morning only", "2024-01-01T07:00", "2024-01-01T07:30", 0},
		{"closing hour only", "2024-01-01T17:00", "2024-01-01T17:45", 0},
		{"saturday only", "2024-01-06T10:00", "2024-01-06T12:00", 0},
		{"sunday only", "2024-01-07T10:00", "2024-01-07T12:00", 0},
		{"friday into saturday", "2024-01-05T15:00", "2024-01-06T10:00", 2 * time.Hour},
		{"friday into sunday", "2024-01-05T16:00", "2024-01-07T20:00", time.Hour},
		{"weekend start is capped at segment duration", "2024-01-06T10:00", "2024-01-08T09:00", 47 * time.Hour},
		{"overnight segment", "2024-01-01T16:00", "2024-01-02T00:00", 8 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segment := domain.Segment{Start: at(tt.start), End: at(tt.end), Count: 1}
			assert.Equal(t, tt.expected, calendar.Overlap(segment))
		})
	}
}

func TestBusinessCalendar_OverlapUsesCalendarTimezone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 15:00-22:00 UTC is 09:00-16:00 in Chicago during winter.
	segment := domain.Segment{Start: at("2024-01-01T15:00"), End: at("2024-01-01T22:00"), Count: 1}

	assert.Equal(t, 7*time.Hour, domain.DefaultBusinessCalendar(chicago).Overlap(segment))
	assert.Equal(t, 2*time.Hour, domain.DefaultBusinessCalendar(time.UTC).Overlap(segment))
}

func TestBusinessCalendar_BusinessTimeUsesCalendarDays(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// Monday 02:00 UTC is Sunday 20:00 in Chicago, so only Monday counts
	// there while UTC sees Monday and Tuesday.
	start, end := at("2024-01-08T02:00"), at("2024-01-09T01:00")

	assert.Equal(t, 8*time.Hour, domain.DefaultBusinessCalendar(chicago).BusinessTime(start, end))
	assert.Equal(t, 16*time.Hour, domain.DefaultBusinessCalendar(time.UTC).BusinessTime(start, end))
}

func TestBusinessCalendar_NilLocationIsUTC(t *testing.T) {
	segment := domain.Segment{Start: at("2024-01-01T09:00"), End: at("2024-01-01T10:00"), Count: 1}

	assert.Equal(t, time.Hour, domain.BusinessCalendar{OpenHour: 8, CloseHour: 17}.Overlap(segment))
}

func TestBusinessCalendar_OverlapBounds(t *testing.T) {
	calendar := domain.DefaultBusinessCalendar(time.UTC)
	origin := at("2024-01-01T00:00")

	// Sweep segments starting every 5 hours over two weeks with lengths up
	// to four days.
	for offset := time.Duration(0); offset < 14*24*time.Hour; offset += 5 * time.Hour {
		for length := time.Duration(0); length <= 96*time.Hour; length += 7 * time.Hour {
			segment := domain.Segment{Start: origin.Add(offset), End: origin.Add(offset + length), Count: 1}
			overlap := calendar.Overlap(segment)

			assert.GreaterOrEqual(t, overlap, time.Duration(0), "segment %v-%v", segment.Start, segment.End)
			assert.LessOrEqual(t, overlap, segment.Duration(), "segment %v-%v", segment.Start, segment.End)
		}
	}
}

func TestBusinessCalendar_BusinessTime(t *testing.T) {
	calendar := domain.DefaultBusinessCalendar(time.UTC)

	tests := []struct {
		name     string
		start    string
		end      string
		expected time.Duration
	}{
		{"single instant on a weekday", "2024-01-01T00:00", "2024-01-01T00:00", 8 * time.Hour},
		{"end day is included", "2024-01-01T00:00", "2024-01-02T00:00", 16 * time.Hour},
		{"full week", "2024-01-01T00:00", "2024-01-07T23:00", 40 * time.Hour},
		{"weekend only", "2024-01-06T00:00", "2024-01-07T12:00", 0},
		{"end before start", "2024-01-02T00:00", "2024-01-01T00:00", 0},
		{"partial first day still counts", "2024-01-05T23:00", "2024-01-06T22:00", 8 * time.Hour},
		{"end day counts when its time is earlier than start's", "2024-01-01T23:00", "2024-01-02T10:00", 16 * time.Hour},
		{"friday night into monday morning", "2024-01-05T20:00", "2024-01-08T07:00", 16 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calendar.BusinessTime(at(tt.start), at(tt.end)))
		})
	}
}
