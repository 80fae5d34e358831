package http

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

const storePingTimeout = 5 * time.Second

// StoreChecker is implemented by the status record store
type StoreChecker interface {
	Ping(ctx context.Context) error
}

// StatisticsActivity reports the last successful statistics computation
type StatisticsActivity interface {
	LastComputedAt() (time.Time, bool)
}

// HealthHandler serves liveness, readiness and detailed health of the
// statistics service
type HealthHandler struct {
	store     StoreChecker
	activity  StatisticsActivity
	driver    string
	version   string
	startTime time.Time
}

// NewHealthHandler creates a health handler for the store of the given
// driver. activity may be nil.
func NewHealthHandler(store StoreChecker, activity StatisticsActivity, driver, version string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		activity:  activity,
		driver:    driver,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of every health endpoint. Sections are only
// present on the endpoints that compute them.
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	Store      *StoreHealth      `json:"store,omitempty"`
	Statistics *StatisticsHealth `json:"statistics,omitempty"`
	Runtime    *RuntimeHealth    `json:"runtime,omitempty"`
}

// StoreHealth is the result of pinging the status record store
type StoreHealth struct {
	Driver  string `json:"driver"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// StatisticsHealth describes the last successful computation. Both fields
// are empty until one has succeeded.
type StatisticsHealth struct {
	LastComputedAt *string `json:"last_computed_at"`
	Since          string  `json:"since,omitempty"`
}

// RuntimeHealth holds process statistics
type RuntimeHealth struct {
	Goroutines int    `json:"goroutines"`
	AllocBytes uint64 `json:"alloc_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// HandleLiveness reports that the process is serving requests. It never
// touches the store.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.baseResponse(StatusHealthy))
}

// HandleReadiness reports whether statistics can be served, which needs a
// reachable store.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	store := h.pingStore(r.Context())

	response := h.baseResponse(StatusHealthy)
	response.Store = &store
	if store.Status != StatusHealthy {
		response.Status = StatusUnhealthy
	}

	WriteJSON(w, statusCodeFor(response.Status), response)
}

// HandleHealth reports the store, the last statistics computation and
// process statistics.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	store := h.pingStore(r.Context())

	response := h.baseResponse(StatusHealthy)
	response.Store = &store
	response.Statistics = h.statistics()
	response.Runtime = readRuntime()
	if store.Status != StatusHealthy {
		response.Status = StatusDegraded
	}

	WriteJSON(w, statusCodeFor(response.Status), response)
}

func (h *HealthHandler) baseResponse(status string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthHandler) pingStore(ctx context.Context) StoreHealth {
	result := StoreHealth{Driver: h.driver, Status: StatusUnhealthy}
	if h.store == nil {
		result.Message = "store not configured"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	began := time.Now()
	err := h.store.Ping(ctx)
	result.Latency = time.Since(began).String()
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Status = StatusHealthy
	return result
}

func (h *HealthHandler) statistics() *StatisticsHealth {
	stats := &StatisticsHealth{}
	if h.activity == nil {
		return stats
	}
	last, ok := h.activity.LastComputedAt()
	if !ok {
		return stats
	}
	formatted := last.UTC().Format(time.RFC3339)
	stats.LastComputedAt = &formatted
	stats.Since = time.Since(last).Round(time.Second).String()
	return stats
}

func readRuntime() *RuntimeHealth {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return &RuntimeHealth{
		Goroutines: runtime.NumGoroutine(),
		AllocBytes: mem.Alloc,
		SysBytes:   mem.Sys,
		NumGC:      mem.NumGC,
	}
}

func statusCodeFor(status string) int {
	if status == StatusHealthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
