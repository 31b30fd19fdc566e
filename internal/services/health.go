package services

import (
	"context"
	"os"
	"time"

	"github.com/khkk24/projeto-how-final/internal/config"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Uptime      string    `json:"uptime"`
	DataDirOK   bool      `json:"data_dir_ok"`
	ModelLoaded bool      `json:"model_loaded"`
	CheckedAt   time.Time `json:"checked_at"`
}

// HealthService reports readiness and liveness.
type HealthService struct {
	paths   *config.Paths
	model   *ModelService
	started time.Time
}

// NewHealthService creates the health service.
func NewHealthService(paths *config.Paths, model *ModelService) *HealthService {
	return &HealthService{
		paths:   paths,
		model:   model,
		started: time.Now(),
	}
}

// Health returns the full health status. The service is degraded without a
// data directory; a missing model only means training has not run yet.
func (s *HealthService) Health(_ context.Context) *HealthStatus {
	dataOK := true
	if _, err := os.Stat(s.paths.DataDir); err != nil {
		dataOK = false
	}

	status := "healthy"
	if !dataOK {
		status = "degraded"
	}

	return &HealthStatus{
		Status:      status,
		Version:     Version,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		DataDirOK:   dataOK,
		ModelLoaded: s.model != nil && s.model.Fitted(),
		CheckedAt:   time.Now().UTC(),
	}
}

// Ready reports whether the service can accept traffic.
func (s *HealthService) Ready(ctx context.Context) bool {
	return s.Health(ctx).DataDirOK
}
