package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"srm-agent-portal/internal/api/grpc/interceptor"
)

// ServiceName is the name reported through grpc.health.v1 alongside the overall "" status.
const ServiceName = "srm.v1.AgentPortal"

// HealthReporter flips the serving status of the portal.
type HealthReporter struct {
	server *health.Server
}

// NewHealthReporter starts NOT_SERVING until the first successful database probe.
func NewHealthReporter() *HealthReporter {
	h := &HealthReporter{server: health.NewServer()}
	h.SetServing(false)
	return h
}

func (h *HealthReporter) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}

// Server exposes the underlying health server, e.g. for the HTTP /healthz check.
func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}

// NewServer builds the gRPC server carrying the health service and reflection for grpcurl.
func NewServer(h *HealthReporter) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.UnaryLogging()),
	)
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
	return s
}
