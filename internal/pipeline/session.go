package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"edipulse/internal/aggregator"
	"edipulse/internal/analytics"
	"edipulse/internal/classifier"
	apierrors "edipulse/internal/errors"
	"edipulse/internal/extractor"
	"edipulse/internal/infrastructure"
	"edipulse/internal/insights"
	"edipulse/internal/normalizer"
	"edipulse/pkg/contracts/domain"
)

// Session runs one analysis over one upload batch. All pipeline state lives
// on the session or on the stack of Analyze.
type Session struct {
	ID       string
	cfg      Config
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
	progress ProgressReporter
	now      func() time.Time

	classifier *classifier.Classifier
	extractor  *extractor.Extractor
	normalizer *normalizer.Normalizer
	engine     *analytics.Engine
	generator  *insights.Generator
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the tracer used for stage spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the pipeline instruments
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithProgress sets the progress reporter
func WithProgress(r ProgressReporter) Option {
	return func(s *Session) {
		if r != nil {
			s.progress = r
		}
	}
}

// WithID overrides the generated session ID
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.ID = id
		}
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates a session with its own stage components
func NewSession(cfg Config, opts ...Option) *Session {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	s := &Session{
		ID:       uuid.New().String(),
		cfg:      cfg,
		logger:   infrastructure.GetLogger(),
		tracer:   tracenoop.NewTracerProvider().Tracer(infrastructure.ServiceName),
		progress: noopReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("session_id", s.ID))

	s.classifier = classifier.NewClassifier(s.logger)
	s.extractor = extractor.NewExtractor(s.logger, cfg.SizePolicy)
	s.normalizer = normalizer.NewNormalizer(s.logger)
	s.engine = analytics.NewEngine(cfg.Metrics, s.logger)
	s.generator = insights.NewGenerator(cfg.Thresholds, s.logger)
	return s
}

// extraction is the result slot of one file
type extraction struct {
	tables []domain.RawTable
	err    error
}

// Analyze runs classify, extract, normalize, aggregate, metrics and insights.
// Batch-fatal errors return no report; file- and record-local problems are
// collected as warnings on the report.
func (s *Session) Analyze(ctx context.Context, batch domain.UploadBatch) (report *domain.Report, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "pipeline.analyze", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.Int("batch.files", len(batch.Files)),
		attribute.Int("batch.auxiliary", len(batch.Auxiliary)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failed"
			infrastructure.RecordError(ctx, err)
			s.report(StageFailed, 0, 0, err.Error())
			s.logger.ErrorContext(ctx, "Analysis failed", slog.String("error", err.Error()))
		}
		s.metrics.RecordRun(ctx, time.Since(start), outcome)
	}()

	s.logger.InfoContext(ctx, "Analysis started",
		slog.Int("files", len(batch.Files)),
		slog.Int("auxiliary", len(batch.Auxiliary)))

	// Classification fails fast; nothing is read before it succeeds
	_, classifySpan := s.tracer.Start(ctx, "pipeline.classify")
	classified, err := s.classifier.ClassifyBatch(batch)
	classifySpan.End()
	if err != nil {
		return nil, err
	}
	s.report(StageClassify, 1, 1, fmt.Sprintf("customer %s, %d files", classified.Customer, len(classified.Primary)))

	files := append(append([]domain.ClassifiedFile(nil), classified.Primary...), classified.Auxiliary...)
	slots, err := s.extractAll(ctx, files)
	if err != nil {
		return nil, err
	}

	var warnings []domain.Warning
	collect := func(ws ...domain.Warning) {
		for _, w := range ws {
			s.metrics.RecordWarning(ctx, w.Type)
		}
		warnings = append(warnings, ws...)
	}

	// Parse errors surface in batch order regardless of which worker finished first
	for i, slot := range slots {
		if slot.err == nil {
			continue
		}
		if s.cfg.abortOnParseError() {
			return nil, slot.err
		}
		collect(asWarning(files[i].Descriptor.Name, slot.err))
	}

	_, normalizeSpan := s.tracer.Start(ctx, "pipeline.normalize")
	builder := aggregator.NewBuilder()
	normalizeTracker := NewProgressTracker(StageNormalize, len(classified.Primary))
	for i, f := range classified.Primary {
		slot := slots[i]
		if slot.err != nil {
			continue
		}
		if len(slot.tables) == 0 {
			collect(apierrors.NewAppValidationError(f.Descriptor.Name, "no recognized tables in file").AsWarning())
		}
		for _, table := range slot.tables {
			res := s.normalizer.Normalize(table, f.Descriptor.DetectedPeriod)
			collect(res.Warnings...)
			builder.Add(f.Descriptor.Name, res.Records)
			s.metrics.RecordRecords(ctx, string(table.Kind), len(res.Records))
		}
		s.progress.ReportProgress(normalizeTracker.Increment(s.ID, f.Descriptor.Name))
	}
	normalizeSpan.End()

	timeline, err := builder.Build()
	if err != nil {
		return nil, err
	}
	s.report(StageAggregate, 1, 1, timeline.String())

	aux := s.normalizeAuxiliary(ctx, classified.Auxiliary, slots[len(classified.Primary):], timeline.LastPeriod(), collect)

	_, metricsSpan := s.tracer.Start(ctx, "pipeline.metrics")
	snapshot := s.engine.Compute(timeline, aux)
	metricsSpan.End()
	s.report(StageMetrics, 1, 1, fmt.Sprintf("%d periods", snapshot.Totals.Periods))

	_, insightSpan := s.tracer.Start(ctx, "pipeline.insights")
	found := s.generator.Generate(snapshot)
	insightSpan.End()
	s.report(StageInsights, 1, 1, fmt.Sprintf("%d insights", len(found)))

	if warnings == nil {
		warnings = []domain.Warning{}
	}
	report = &domain.Report{
		SessionID:   s.ID,
		Customer:    classified.Customer,
		GeneratedAt: s.now().UTC(),
		Files:       classified.Descriptors(),
		Snapshot:    snapshot,
		Insights:    found,
		Warnings:    warnings,
	}

	span.SetAttributes(
		attribute.String("batch.customer", classified.Customer),
		attribute.Int("timeline.records", timeline.RecordCount()),
		attribute.Int("report.warnings", len(warnings)),
	)
	s.logger.InfoContext(ctx, "Analysis completed",
		slog.String("customer", classified.Customer),
		slog.Int("periods", snapshot.Totals.Periods),
		slog.Int("records", timeline.RecordCount()),
		slog.Int("insights", len(found)),
		slog.Int("warnings", len(warnings)),
		slog.Duration("duration", time.Since(start)))
	s.report(StageComplete, 1, 1, "analysis complete")
	return report, nil
}

// extractAll reads every file on a bounded worker pool. Each worker writes
// only its own slot; the group fails only on cancellation.
func (s *Session) extractAll(ctx context.Context, files []domain.ClassifiedFile) ([]extraction, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.extract", trace.WithAttributes(
		attribute.Int("extract.workers", s.cfg.Workers)))
	defer span.End()

	slots := make([]extraction, len(files))
	tracker := NewProgressTracker(StageExtract, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables, err := s.extractor.Extract(gctx, f)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			slots[i] = extraction{tables: tables, err: err}

			outcome := "ok"
			if err != nil {
				outcome = "parse_error"
				s.logger.WarnContext(gctx, "File could not be parsed",
					slog.String("file", f.Descriptor.Name),
					slog.String("error", err.Error()))
			}
			s.metrics.RecordFile(gctx, string(f.Descriptor.Role), outcome, f.Descriptor.ByteSize)
			s.progress.ReportProgress(tracker.Increment(s.ID, f.Descriptor.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

// normalizeAuxiliary folds the optional reference files. Partner reports
// without period columns are booked to the latest timeline period.
func (s *Session) normalizeAuxiliary(ctx context.Context, files []domain.ClassifiedFile, slots []extraction, latest string, collect func(...domain.Warning)) domain.AuxiliaryData {
	var aux domain.AuxiliaryData
	var xref []domain.CrossReferenceEntry

	for i, f := range files {
		if slots[i].err != nil {
			continue
		}
		for _, table := range slots[i].tables {
			switch table.Kind {
			case domain.KindCrossReference:
				entries, ws := s.normalizer.CrossReference(table)
				xref = append(xref, entries...)
				collect(ws...)
			case domain.KindPartnerReport:
				entries, ws := s.normalizer.PartnerReport(table, latest)
				aux.PartnerReport = append(aux.PartnerReport, entries...)
				collect(ws...)
			case domain.KindMapConfig:
				entries, ws := s.normalizer.MapConfig(table)
				aux.MapConfig = append(aux.MapConfig, entries...)
				collect(ws...)
			}
		}
		s.logger.DebugContext(ctx, "Auxiliary file folded",
			slog.String("file", f.Descriptor.Name),
			slog.String("role", string(f.Descriptor.Role)))
	}

	if len(xref) > 0 {
		aux.CrossReference = domain.NewCrossReferenceIndex(xref)
	}
	return aux
}

func (s *Session) report(stage Stage, current, total int, message string) {
	p := Progress{
		SessionID: s.ID,
		Stage:     stage,
		Current:   current,
		Total:     total,
		Message:   message,
	}
	if total > 0 {
		p.Percentage = float64(current) / float64(total) * 100
	}
	s.progress.ReportProgress(p)
}

func asWarning(file string, err error) domain.Warning {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		return appErr.AsWarning()
	}
	return apierrors.NewParsingError(file, "failed to read file", err).AsWarning()
}
