package pipeline

import (
	"edipulse/internal/analytics"
	"edipulse/internal/config"
	"edipulse/internal/insights"
	"edipulse/internal/validation"
	"edipulse/pkg/contracts/domain"
)

// Config is the per-session pipeline configuration
type Config struct {
	Workers      int
	OnParseError string
	SizePolicy   validation.SizePolicy
	Metrics      analytics.Config
	Thresholds   insights.Thresholds
}

// DefaultConfig returns the configuration used when nothing is supplied
func DefaultConfig() Config {
	return FromConfig(config.Default().Pipeline)
}

// FromConfig maps the application pipeline section onto a session config
func FromConfig(pc config.PipelineConfig) Config {
	return Config{
		Workers:      pc.Workers,
		OnParseError: pc.OnParseError,
		SizePolicy: validation.SizePolicy{
			MinBytes: pc.MinFileSize,
			MaxBytes: pc.MaxFileSize,
		},
		Metrics: analytics.Config{
			TopN:    pc.TopN,
			Measure: domain.Measure(pc.Measure),
		},
		Thresholds: insights.Thresholds{
			DeclineThreshold:       pc.Insights.DeclineThreshold,
			GrowthThreshold:        pc.Insights.GrowthThreshold,
			LeaderShareThreshold:   pc.Insights.LeaderShareThreshold,
			TopShareThreshold:      pc.Insights.TopShareThreshold,
			EfficiencyOutlierRatio: pc.Insights.EfficiencyOutlierRatio,
		},
	}
}

func (c Config) abortOnParseError() bool {
	return c.OnParseError == config.ParsePolicyAbort
}
