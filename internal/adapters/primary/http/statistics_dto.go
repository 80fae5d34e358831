package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lorrc/presence-stats/internal/core/domain"
)

// StatusChangeResponse is one segment of the availability timeline.
// Start and End are unix milliseconds. The first segment has no triggering
// status change, so its user fields are omitted.
type StatusChangeResponse struct {
	Start  int64  `json:"start"`
	End    int64  `json:"end"`
	Total  int    `json:"total"`
	User   string `json:"user,omitempty"`
	Reason string `json:"reason,omitempty"`
	Status string `json:"status,omitempty"`
}

// StatisticsResponse is the JSON form of domain.PresenceStatistics.
// Durations are in seconds; percentages are strings such as "62.5%" or null
// when the denominator is zero.
type StatisticsResponse struct {
	Statuses                []StatusChangeResponse `json:"statuses"`
	TotalTimeOnline         float64                `json:"total_time_online"`
	TotalTimeOnlineBusiness float64                `json:"total_time_online_business"`
	TotalTime               float64                `json:"total_time"`
	PercentOnline           *string                `json:"percent_online"`
	PercentOnlineBusiness   *string                `json:"percent_online_business"`
}

// ToStatisticsResponse converts computed statistics into the response form.
func ToStatisticsResponse(stats *domain.PresenceStatistics) StatisticsResponse {
	statuses := make([]StatusChangeResponse, 0, len(stats.Segments))
	for _, segment := range stats.Segments {
		item := StatusChangeResponse{
			Start: segment.Start.UnixMilli(),
			End:   segment.End.UnixMilli(),
			Total: segment.Count,
		}
		if trigger := segment.Trigger; trigger != nil {
			item.User = trigger.UserDisplayName
			item.Reason = trigger.Reason
			item.Status = trigger.Status.String()
		}
		statuses = append(statuses, item)
	}

	return StatisticsResponse{
		Statuses:                statuses,
		TotalTimeOnline:         seconds(stats.TotalTimeOnline),
		TotalTimeOnlineBusiness: seconds(stats.TotalTimeOnlineBusiness),
		TotalTime:               seconds(stats.TotalTime),
		PercentOnline:           percent(stats.PercentOnline),
		PercentOnlineBusiness:   percent(stats.PercentOnlineBusiness),
	}
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func percent(value decimal.NullDecimal) *string {
	if !value.Valid {
		return nil
	}
	s := value.Decimal.String() + "%"
	return &s
}
