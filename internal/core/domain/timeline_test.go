package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/presence-stats/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	userB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func event(user uuid.UUID, status domain.Status, when string) domain.StatusEvent {
	return domain.StatusEvent{UserID: user, Status: status, Reason: "CLIENT_IDLE", CreatedAt: at(when)}
}

func newUserEvent(user uuid.UUID, when string) domain.StatusEvent {
	return domain.StatusEvent{UserID: user, Status: domain.StatusUnavailable, Reason: domain.ReasonNewUser, CreatedAt: at(when)}
}

func assertCoverage(t *testing.T, segments []domain.Segment, start, end time.Time) {
	t.Helper()
	require.NotEmpty(t, segments)
	assert.Equal(t, start, segments[0].Start)
	assert.Equal(t, end, segments[len(segments)-1].End)
	for i := 1; i < len(segments); i++ {
		assert.Equal(t, segments[i-1].End, segments[i].Start, "segment %d is not contiguous", i)
	}
	for i, segment := range segments {
		assert.GreaterOrEqual(t, segment.Count, 0, "segment %d has a negative count", i)
	}
}

func TestBaselineCount(t *testing.T) {
	tests := []struct {
		name     string
		events   []domain.StatusEvent
		at       time.Time
		expected int
	}{
		{
			name:     "no history",
			at:       at("2024-01-01T00:00"),
			expected: 0,
		},
		{
			name: "arrivals and departures",
			events: []domain.StatusEvent{
				event(userA, domain.StatusAvailable, "2023-12-31T08:00"),
				event(userB, domain.StatusAvailable, "2023-12-31T09:00"),
				event(userA, domain.StatusUnavailable, "2023-12-31T17:00"),
			},
			at:       at("2024-01-01T00:00"),
			expected: 1,
		},
		{
			name: "departures without arrivals clamp at zero",
			events: []domain.StatusEvent{
				event(userA, domain.StatusUnavailable, "2023-12-31T08:00"),
				event(userB, domain.StatusUnavailable, "2023-12-31T09:00"),
				event(userA, domain.StatusAvailable, "2023-12-31T10:00"),
			},
			at:       at("2024-01-01T00:00"),
			expected: 1,
		},
		{
			name: "creation records count like any other status",
			events: []domain.StatusEvent{
				event(userA, domain.StatusAvailable, "2023-12-31T08:00"),
				newUserEvent(userB, "2023-12-31T09:00"),
			},
			at:       at("2024-01-01T00:00"),
			expected: 0,
		},
		{
			name: "events at or after the instant are ignored",
			events: []domain.StatusEvent{
				event(userA, domain.StatusAvailable, "2023-12-31T08:00"),
				event(userB, domain.StatusAvailable, "2024-01-01T00:00"),
			},
			at:       at("2024-01-01T00:00"),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.BaselineCount(tt.events, tt.at))
		})
	}
}

func TestBuildTimeline_Scenario(t *testing.T) {
	start := at("2024-01-01T00:00")
	end := at("2024-01-02T00:00")
	now := at("2024-02-01T00:00")

	events := []domain.StatusEvent{
		event(userA, domain.StatusAvailable, "2024-01-01T09:00"),
		event(userB, domain.StatusAvailable, "2024-01-01T10:00"),
		event(userA, domain.StatusUnavailable, "2024-01-01T16:00"),
	}

	segments := domain.BuildTimeline(0, events, start, end, now)

	require.Len(t, segments, 4)
	assertCoverage(t, segments, start, end)

	counts := []int{segments[0].Count, segments[1].Count, segments[2].Count, segments[3].Count}
	assert.Equal(t, []int{0, 1, 2, 1}, counts)

	assert.Nil(t, segments[0].Trigger)
	require.NotNil(t, segments[1].Trigger)
	assert.Equal(t, userA, segments[1].Trigger.UserID)
	assert.Equal(t, domain.StatusAvailable, segments[1].Trigger.Status)
	require.NotNil(t, segments[3].Trigger)
	assert.Equal(t, domain.StatusUnavailable, segments[3].Trigger.Status)
	assert.Equal(t, at("2024-01-01T16:00"), segments[3].Start)
}

func TestBuildTimeline_NoEvents(t *testing.T) {
	start := at("2024-01-01T00:00")
	end := at("2024-01-08T00:00")
	now := at("2024-02-01T00:00")

	segments := domain.BuildTimeline(3, nil, start, end, now)

	require.Len(t, segments, 1)
	assert.Equal(t, domain.Segment{Start: start, End: end, Count: 3}, segments[0])
}

func TestBuildTimeline_FutureEndClampsToNow(t *testing.T) {
	start := at("2024-01-01T00:00")
	end := at("2024-12-31T00:00")
	now := at("2024-01-01T12:00")

	events := []domain.StatusEvent{event(userA, domain.StatusAvailable, "2024-01-01T09:00")}

	segments := domain.BuildTimeline(0, events, start, end, now)

	assertCoverage(t, segments, start, now)
	assert.Equal(t, 1, segments[len(segments)-1].Count)
}

func TestBuildTimeline_AllCreationRecords(t *testing.T) {
	start := at("2024-01-01T00:00")
	end := at("2024-01-02T00:00")
	now := at("2024-02-01T00:00")

	events := []domain.StatusEvent{
		newUserEvent(userA, "2024-01-01T09:00"),
		newUserEvent(userB, "2024-01-01T11:00"),
	}

	segments := domain.BuildTimeline(2, events, start, end, now)

	require.Len(t, segments, 1)
	assert.Equal(t, domain.Segment{Start: start, End: end, Count: 2}, segments[0])
}

func TestBuildTimeline_CreationRecordsDoNotChangeTimeline(t *testing.T) {
	start := at("2024-01-01T00:00")
	end := at("2024-01-02T00:00")
	now := at("2024-02-01T00:00")

	base := []domain.StatusEvent{
		event(userA, domain.StatusAvailable, "2024-01-01T09:00"),
		event(userB, domain.StatusAvailable, "2024-01-01T10:00"),
		event(userA, domain.StatusUnavailable, "2024-01-01T16:00"),
	}

	for position := 0; position <= len(base); position++ {
		withCreation := make([]domain.StatusEvent, 0, len(base)+1)
		withCreation = append(withCreation, base[:position]...)
		withCreation = append(withCreation, newUserEvent(userB, "2024-01-01T09:30"))
		withCreation = append(withCreation, base[position:]...)

		assert.Equal(t,
			domain.BuildTimeline(0, base, start, end, now),
			domain.BuildTimeline(0, withCreation, start, end, now),
			"creation record at position %d changed the timeline", position,
		)
	}
}

func TestBuildTimeline_UnderflowNeverNegative(t *testing.T) {
	start := at("2024-01-01T00:00")
	end := at("2024-01-02T00:00")
	now := at("2024-02-01T00:00")

	events := []domain.StatusEvent{
		event(userA, domain.StatusUnavailable, "2024-01-01T01:00"),
		event(userB, domain.StatusUnavailable, "2024-01-01T02:00"),
		event(userA, domain.StatusAvailable, "2024-01-01T03:00"),
		event(userA, domain.StatusUnavailable, "2024-01-01T04:00"),
		event(userA, domain.StatusUnavailable, "2024-01-01T05:00"),
		event(userB, domain.Status("BUSY"), "2024-01-01T06:00"),
	}

	segments := domain.BuildTimeline(1, events, start, end, now)

	assertCoverage(t, segments, start, end)
	counts := make([]int, 0, len(segments))
	for _, segment := range segments {
		counts = append(counts, segment.Count)
	}
	assert.Equal(t, []int{1, 0, 0, 1, 0, 0, 0}, counts)
}
