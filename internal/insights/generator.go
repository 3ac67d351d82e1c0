package insights

import (
	"log/slog"
	"sort"

	"edipulse/pkg/contracts/domain"
)

// Thresholds parameterise the rule battery
type Thresholds struct {
	DeclineThreshold       float64
	GrowthThreshold        float64
	LeaderShareThreshold   float64
	TopShareThreshold      float64
	EfficiencyOutlierRatio float64
}

// DefaultThresholds returns the stock rule thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		DeclineThreshold:       0.2,
		GrowthThreshold:        0.2,
		LeaderShareThreshold:   0.5,
		TopShareThreshold:      0.8,
		EfficiencyOutlierRatio: 2.0,
	}
}

// withDefaults fills zero thresholds from DefaultThresholds
func (th Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if th.DeclineThreshold == 0 {
		th.DeclineThreshold = def.DeclineThreshold
	}
	if th.GrowthThreshold == 0 {
		th.GrowthThreshold = def.GrowthThreshold
	}
	if th.LeaderShareThreshold == 0 {
		th.LeaderShareThreshold = def.LeaderShareThreshold
	}
	if th.TopShareThreshold == 0 {
		th.TopShareThreshold = def.TopShareThreshold
	}
	if th.EfficiencyOutlierRatio == 0 {
		th.EfficiencyOutlierRatio = def.EfficiencyOutlierRatio
	}
	return th
}

type rule func(th Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool)

// rules run in this order; the order breaks severity ties
var rules = []rule{
	largestDecline,
	largestGrowth,
	dominantEntity,
	topConcentration,
	seasonalPeak,
	overallTrend,
	efficiencyOutlier,
	unresolvedReferences,
	unmappedPartners,
	partnerReportMismatch,
}

// Generator evaluates the rule battery over a snapshot
type Generator struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewGenerator creates an insight generator. Zero thresholds take their defaults.
func NewGenerator(th Thresholds, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{thresholds: th.withDefaults(), logger: logger.With(slog.String("component", "insights"))}
}

// Generate returns at most one insight per rule, sorted by severity with
// rule order breaking ties. The result is a pure function of the snapshot.
func (g *Generator) Generate(snap domain.MetricsSnapshot) []domain.Insight {
	out := make([]domain.Insight, 0, len(rules))
	for _, r := range rules {
		if in, ok := r(g.thresholds, snap); ok {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity
	})

	g.logger.Debug("Insights generated", slog.Int("count", len(out)))
	return out
}
