package services

import (
	"context"
	"log/slog"
	"time"

	"edipulse/internal/config"
	"edipulse/internal/infrastructure"
	"edipulse/pkg/contracts"
)

// HubStats is the part of the progress hub the health check reads
type HubStats interface {
	Stats() map[string]int64
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	analysis  *AnalysisService
	hub       HubStats
	startTime time.Time
	now       func() time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// NewHealthService creates a health service. analysis and hub may be nil.
func NewHealthService(analysis *AnalysisService, hub HubStats, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   config.AppVersion,
		analysis:  analysis,
		hub:       hub,
		startTime: time.Now(),
		now:       time.Now,
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: hs.now().UTC(),
		Version:   hs.version,
		Runtime:   infrastructure.ReadRuntimeStats(hs.startTime).Map(),
		Services:  make(map[string]interface{}),
	}
	status.Runtime["uptime_seconds"] = hs.now().Sub(hs.startTime).Seconds()
	if hs.analysis != nil {
		status.Services["analysis"] = hs.analysis.Stats()
	}
	if hs.hub != nil {
		status.Services["websocket"] = hs.hub.Stats()
	}

	hs.logger.DebugContext(ctx, "health check", slog.String("status", status.Status))
	return status
}

// StartTime is when the service was created
func (hs *HealthService) StartTime() time.Time {
	return hs.startTime
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"name":          config.AppName,
		"version":       hs.version,
		"build_time":    info.BuildTime,
		"git_commit":    info.GitCommit,
		"report_format": info.ReportFormat,
		"go_version":    info.GoVersion,
		"os":            info.OS,
		"arch":          info.Architecture,
		"start_time":    hs.startTime.UTC().Format(time.RFC3339),
	}
}
