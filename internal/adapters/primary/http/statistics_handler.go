package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/presence-stats/internal/adapters/primary/validation"
	"github.com/lorrc/presence-stats/internal/core/ports"
)

// StatisticsHandler handles HTTP requests for presence statistics
type StatisticsHandler struct {
	statsService ports.StatisticsService
	location     *time.Location
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewStatisticsHandler creates a new statistics handler. Window bounds
// without an explicit offset are read in loc.
func NewStatisticsHandler(
	statsService ports.StatisticsService,
	loc *time.Location,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *StatisticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StatisticsHandler{
		statsService: statsService,
		location:     loc,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "statistics"),
	}
}

// Router sets up a new chi Router for the statistics routes.
func (h *StatisticsHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for the statistics endpoints.
func (h *StatisticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetStatistics)
}

// HandleGetStatistics handles GET /statistics?userIds=...&start=...&end=...
func (h *StatisticsHandler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	v := validation.NewValidator()
	userIDs := v.UUIDList("userIds", query["userIds"]...)
	start := v.Date("start", query.Get("start"), h.location)
	end := v.Date("end", query.Get("end"), h.location)

	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	stats, err := h.statsService.GetStats(r.Context(), ports.GetStatsParams{
		UserIDs: userIDs,
		Start:   start,
		End:     end,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.DebugContext(r.Context(), "statistics served",
		"users", len(userIDs),
		"segments", len(stats.Segments),
	)

	WriteJSON(w, http.StatusOK, ToStatisticsResponse(stats))
}
