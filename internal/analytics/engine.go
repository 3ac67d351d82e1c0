package analytics

import (
	"log/slog"

	"edipulse/internal/aggregator"
	"edipulse/pkg/contracts/domain"
)

// Config tunes metric derivation
type Config struct {
	// TopN is the number of leading entities counted in concentration share
	TopN int
	// Measure selects the count that drives totals and rankings
	Measure domain.Measure
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		TopN:    5,
		Measure: domain.MeasureDocuments,
	}
}

// Engine derives a MetricsSnapshot from a timeline. It holds no mutable state.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates a metrics engine. Zero config values take defaults.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	def := DefaultConfig()
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.Measure != domain.MeasureKilocharacters {
		cfg.Measure = def.Measure
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger.With(slog.String("component", "analytics"))}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Compute derives every metric. The timeline and auxiliary data are not modified.
func (e *Engine) Compute(t *aggregator.Timeline, aux domain.AuxiliaryData) domain.MetricsSnapshot {
	snap := domain.MetricsSnapshot{Measure: e.cfg.Measure}

	snap.Periods = e.periodSeries(t)
	snap.Totals = totals(snap.Periods)
	snap.Dimensions = e.dimensions(t, aux.CrossReference)
	snap.Seasonality = seasonality(snap.Periods)
	snap.Reconciliation = reconcile(snap.Dimensions, aux.CrossReference)

	if len(aux.PartnerReport) > 0 {
		summary := summarizePartnerReport(aux.PartnerReport, activePartners(t, snap.Dimensions))
		snap.PartnerReport = &summary
	}
	if len(aux.MapConfig) > 0 {
		summary := summarizeMapConfig(aux.MapConfig, activePartners(t, snap.Dimensions))
		snap.MapConfig = &summary
	}

	e.logger.Debug("Metrics computed",
		slog.Int("periods", snap.Totals.Periods),
		slog.Int("dimensions", len(snap.Dimensions)),
		slog.String("seasonality", string(snap.Seasonality.Status)))
	return snap
}

// periodSeries totals each period from the first summary kind it carries
func (e *Engine) periodSeries(t *aggregator.Timeline) []domain.PeriodMetrics {
	periods := t.Periods()
	series := make([]domain.PeriodMetrics, 0, len(periods))

	for i, p := range periods {
		pm := domain.PeriodMetrics{
			Period:  p,
			Sources: t.Sources(p),
		}
		for _, kind := range domain.SummaryKinds {
			recs := t.Records(p, kind)
			if len(recs) == 0 {
				continue
			}
			pm.SourceKind = kind
			for _, r := range recs {
				pm.Documents += r.DocumentCount
				pm.Kilocharacters += r.KilocharacterCount
				pm.Charge += r.Charge
			}
			break
		}
		pm.Volume = volume(e.cfg.Measure, pm.Documents, pm.Kilocharacters)
		pm.Efficiency = Efficiency(pm.Kilocharacters, pm.Documents)

		if i > 0 {
			prev := series[i-1]
			pm.Growth = GrowthRate(prev.Volume, pm.Volume)
			pm.DocumentGrowth = GrowthRate(float64(prev.Documents), float64(pm.Documents))
			pm.KilocharacterGrowth = GrowthRate(prev.Kilocharacters, pm.Kilocharacters)
		}
		series = append(series, pm)
	}
	return series
}

func totals(series []domain.PeriodMetrics) domain.Totals {
	tot := domain.Totals{Periods: len(series)}
	if len(series) == 0 {
		return tot
	}
	tot.FirstPeriod = series[0].Period
	tot.LastPeriod = series[len(series)-1].Period
	for _, pm := range series {
		tot.Documents += pm.Documents
		tot.Kilocharacters += pm.Kilocharacters
		tot.Charge += pm.Charge
		tot.Volume += pm.Volume
	}
	tot.Efficiency = Efficiency(tot.Kilocharacters, tot.Documents)
	return tot
}

func volume(m domain.Measure, docs int64, kc float64) float64 {
	if m == domain.MeasureKilocharacters {
		return kc
	}
	return float64(docs)
}

// GrowthRate is (cur-prev)/prev, or nil when prev is zero
func GrowthRate(prev, cur float64) *float64 {
	if prev == 0 {
		return nil
	}
	g := (cur - prev) / prev
	return &g
}

// Efficiency is kilocharacters per document, or nil when there are no documents
func Efficiency(kc float64, docs int64) *float64 {
	if docs == 0 {
		return nil
	}
	v := kc / float64(docs)
	return &v
}
