// Package grpc exposes the optional gRPC health endpoint the binaries serve
// next to their HTTP listeners, and the probe used to check it.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/les-coureurs/internal/platform/logging"
)

// HealthServer wraps a gRPC server that only carries the health service.
type HealthServer struct {
	server   *gogrpc.Server
	health   *health.Server
	listener net.Listener
	service  string
}

// NewHealthServer listens on addr and registers the health service for the named service.
// The service starts NOT_SERVING until MarkServing is called.
func NewHealthServer(addr, service string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen health %s: %w", addr, err)
	}
	server := gogrpc.NewServer(gogrpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)
	hs.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{server: server, health: hs, listener: listener, service: service}, nil
}

// Addr returns the bound listener address.
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// MarkServing flips both the named service and the overall status to SERVING.
func (s *HealthServer) MarkServing() {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(s.service, grpc_health_v1.HealthCheckResponse_SERVING)
}

// Serve blocks until ctx is cancelled, then drains the server.
func (s *HealthServer) Serve(ctx context.Context) error {
	log := logging.With("health")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr()).Str("service", s.service).Msg("grpc health listening")
		errCh <- s.server.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.server.GracefulStop()
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, gogrpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve health: %w", err)
	}
}

// WaitForHealth blocks until the gRPC health check reports SERVING or the context ends.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.With("health")

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := 100 * time.Millisecond
	for {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		response, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		if err == nil && response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}
		if err != nil {
			log.Debug().Err(err).Msg("waiting for grpc health")
		} else {
			log.Debug().Str("status", response.GetStatus().String()).Msg("waiting for grpc health")
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-time.After(backoff):
		}

		if backoff < time.Second {
			backoff = min(backoff*2, time.Second)
		}
	}
}
