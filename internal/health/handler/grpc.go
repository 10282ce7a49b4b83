package handler

import (
	"context"
	"log/slog"

	healthv1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Server implements grpc.health.v1.Health. Check reports SERVING only when Checker.Ready succeeds.
// Watch and List are left unimplemented.
type Server struct {
	healthv1.UnimplementedHealthServer
	checker *Checker
	log     *slog.Logger
}

// NewServer returns a new Health gRPC server.
func NewServer(checker *Checker, log *slog.Logger) *Server {
	return &Server{checker: checker, log: log}
}

// Check returns the serving status. Dependency failures are reported as NOT_SERVING, never as a gRPC error.
func (s *Server) Check(ctx context.Context, req *healthv1.HealthCheckRequest) (*healthv1.HealthCheckResponse, error) {
	if err := s.checker.Ready(ctx); err != nil {
		s.log.WarnContext(ctx, "health check failed", "service", req.GetService(), "error", err)
		return &healthv1.HealthCheckResponse{Status: healthv1.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthv1.HealthCheckResponse{Status: healthv1.HealthCheckResponse_SERVING}, nil
}
