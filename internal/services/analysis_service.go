package services

import (
	"context"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"

	"edipulse/internal/config"
	apierrors "edipulse/internal/errors"
	"edipulse/internal/infrastructure"
	"edipulse/internal/pipeline"
	"edipulse/pkg/contracts/domain"
)

// Overrides adjusts the configured pipeline for one run. Zero values keep the configured setting.
type Overrides struct {
	TopN         int
	Measure      string
	OnParseError string
}

// AnalysisService runs one pipeline session per request
type AnalysisService struct {
	base     config.PipelineConfig
	progress pipeline.ProgressReporter
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger

	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// AnalysisOption configures an AnalysisService
type AnalysisOption func(*AnalysisService)

// WithProgress forwards every session's progress to r
func WithProgress(r pipeline.ProgressReporter) AnalysisOption {
	return func(s *AnalysisService) { s.progress = r }
}

// WithTelemetry traces and meters every session
func WithTelemetry(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) AnalysisOption {
	return func(s *AnalysisService) {
		s.tracer = tracer
		s.metrics = metrics
	}
}

// NewAnalysisService creates a service over the configured pipeline section
func NewAnalysisService(base config.PipelineConfig, logger *slog.Logger, opts ...AnalysisOption) *AnalysisService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	s := &AnalysisService{
		base:   base,
		logger: logger.With(slog.String("service", "analysis")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve applies o to the configured pipeline section and validates the result
func (s *AnalysisService) Resolve(o Overrides) (config.PipelineConfig, error) {
	pc := s.base
	if o.TopN > 0 {
		pc.TopN = o.TopN
	}
	if o.Measure != "" {
		pc.Measure = o.Measure
	}
	if o.OnParseError != "" {
		pc.OnParseError = o.OnParseError
	}

	switch pc.Measure {
	case string(domain.MeasureDocuments), string(domain.MeasureKilocharacters):
	default:
		return pc, apierrors.ErrValidation("measure", "measure must be documents or kilocharacters")
	}
	switch pc.OnParseError {
	case config.ParsePolicySkip, config.ParsePolicyAbort:
	default:
		return pc, apierrors.ErrValidation("on_parse_error", "on_parse_error must be skip or abort")
	}
	return pc, nil
}

// Analyze runs batch through a fresh session
func (s *AnalysisService) Analyze(ctx context.Context, batch domain.UploadBatch, o Overrides) (*domain.Report, error) {
	pc, err := s.Resolve(o)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(s.logger)}
	if s.progress != nil {
		opts = append(opts, pipeline.WithProgress(s.progress))
	}
	if s.tracer != nil {
		opts = append(opts, pipeline.WithTracer(s.tracer))
	}
	if s.metrics != nil {
		opts = append(opts, pipeline.WithMetrics(s.metrics))
	}
	session := pipeline.NewSession(pipeline.FromConfig(pc), opts...)

	s.active.Add(1)
	defer s.active.Add(-1)

	report, err := session.Analyze(ctx, batch)
	if err != nil {
		s.failed.Add(1)
		return nil, err
	}
	s.completed.Add(1)
	return report, nil
}

// Stats reports session counters
func (s *AnalysisService) Stats() map[string]int64 {
	return map[string]int64{
		"active":    s.active.Load(),
		"completed": s.completed.Load(),
		"failed":    s.failed.Load(),
	}
}
