package domain

import "time"

// applyStatus returns the available count after a status change.
// The count is floored at zero: stored history may start after users were
// already online, so a departure can arrive without a matching arrival.
func applyStatus(count int, status Status) int {
	if status.IsAvailable() {
		return count + 1
	}
	if count > 0 {
		return count - 1
	}
	return 0
}

// BaselineCount reconstructs the number of available users at the given
// instant from every event strictly before it. Events must be in
// chronological order. Creation records follow the same rule as any other
// event here.
func BaselineCount(events []StatusEvent, at time.Time) int {
	count := 0
	for _, event := range events {
		if !event.CreatedAt.Before(at) {
			break
		}
		count = applyStatus(count, event.Status)
	}
	return count
}

// timelineState is the fold state carried across events.
type timelineState struct {
	count       int
	openStart   time.Time
	openTrigger *StatusEvent
	closed      []Segment
}

func (s timelineState) apply(event StatusEvent) timelineState {
	if event.IsNewUser() {
		return s
	}

	s.closed = append(s.closed, Segment{
		Start:   s.openStart,
		End:     event.CreatedAt,
		Count:   s.count,
		Trigger: s.openTrigger,
	})

	trigger := event
	s.count = applyStatus(s.count, event.Status)
	s.openStart = event.CreatedAt
	s.openTrigger = &trigger
	return s
}

// BuildTimeline folds the events of a window into contiguous segments.
//
// The first segment starts at start with the baseline count. Each event
// (except creation records) closes the open segment and opens a new one
// tagged with that event. The last segment is closed at end, or at now when
// end lies in the future. Events must be ordered by CreatedAt and fall
// inside [start, end).
func BuildTimeline(baseline int, events []StatusEvent, start, end, now time.Time) []Segment {
	state := timelineState{
		count:     baseline,
		openStart: start,
		closed:    make([]Segment, 0, len(events)+1),
	}

	for _, event := range events {
		state = state.apply(event)
	}

	closeAt := end
	if end.After(now) {
		closeAt = now
	}

	return append(state.closed, Segment{
		Start:   state.openStart,
		End:     closeAt,
		Count:   state.count,
		Trigger: state.openTrigger,
	})
}
