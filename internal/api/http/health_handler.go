package http

import (
	"context"
	"net/http"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthChecker is satisfied by the grpc health server.
type HealthChecker interface {
	Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error)
}

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp, err := h.checker.Check(r.Context(), &healthpb.HealthCheckRequest{})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "UNKNOWN"})
		return
	}
	status := http.StatusOK
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": resp.GetStatus().String()})
}
