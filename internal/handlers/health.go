package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/utils"
)

const readinessTimeout = 3 * time.Second

// Check is one dependency probed by the readiness endpoint
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness endpoints
type HealthHandler struct {
	checks  []Check
	started time.Time
	logger  *zap.Logger
}

// NewHealthHandler creates a HealthHandler; checks are probed in order on /readyz
func NewHealthHandler(logger *zap.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, started: time.Now(), logger: logger}
}

// HealthCheck reports that the process serves HTTP
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// LivenessCheck reports process uptime
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /livez [get]
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Status:  "alive",
		Details: map[string]any{"uptime_seconds": int64(time.Since(h.started).Seconds())},
	})
}

// ReadinessCheck probes every dependency. Failure details are logged, the
// response only names the unreachable dependency.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse "A dependency is unreachable"
// @Router /readyz [get]
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	details := make(map[string]any, len(h.checks))
	ready := true

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := check.Ping(ctx)
		cancel()

		if err != nil {
			h.logger.Warn("readiness check failed", zap.String("check", check.Name), zap.Error(err))
			details[check.Name] = "unreachable"
			ready = false
			continue
		}
		details[check.Name] = "ok"
	}

	if !ready {
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Details: details})
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "ready", Details: details})
}
