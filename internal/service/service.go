// Package service implements the dashboard's business logic against the
// document store and the live stream hub.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/opsglass/alertboard/internal/client"
	"github.com/opsglass/alertboard/internal/models"
	"github.com/opsglass/alertboard/internal/retry"
	"github.com/opsglass/alertboard/internal/stream"
)

var (
	// ErrInvalidIP is returned when a block request carries no usable IP.
	ErrInvalidIP = errors.New("invalid ip")

	// ErrNotAlert is returned when an ingested event is not an alert.
	ErrNotAlert = errors.New("not an alert")
)

// Service provides implementations for the dashboard API surface.
type Service struct {
	startedAt   time.Time
	version     string
	osClient    *client.OpenSearchClient
	exec        *retry.Executor
	broadcaster *stream.Broadcaster
}

// New wires the service with its document store client, retry policy and
// live stream hub.
func New(version string, osClient *client.OpenSearchClient, exec *retry.Executor, broadcaster *stream.Broadcaster) *Service {
	return &Service{
		startedAt:   time.Now().UTC(),
		version:     version,
		osClient:    osClient,
		exec:        exec,
		broadcaster: broadcaster,
	}
}

// Broadcaster exposes the live stream hub for the stream handler and the
// broker subscriber.
func (s *Service) Broadcaster() *stream.Broadcaster {
	return s.broadcaster
}

// Health compiles health metadata for the service.
func (s *Service) Health(ctx context.Context) *models.HealthResponse {
	uptime := time.Since(s.startedAt).Seconds()
	return &models.HealthResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int64(uptime),
	}
}
