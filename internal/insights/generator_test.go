package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edipulse/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func keys(ins []domain.Insight) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.Key
	}
	return out
}

func TestGenerate_EmptySnapshot(t *testing.T) {
	g := NewGenerator(DefaultThresholds(), nil)
	assert.Empty(t, g.Generate(domain.MetricsSnapshot{}))
}

func TestGenerate_TrendRules(t *testing.T) {
	snap := domain.MetricsSnapshot{
		Measure: domain.MeasureDocuments,
		Periods: []domain.PeriodMetrics{
			{Period: "202401", Volume: 150},
			{Period: "202402", Volume: 80, Growth: ptr(-70.0 / 150.0)},
			{Period: "202403", Volume: 120, Growth: ptr(0.5)},
		},
	}

	ins := NewGenerator(DefaultThresholds(), nil).Generate(snap)
	assert.Equal(t, []string{"trend.mom_decline", "trend.mom_growth", "trend.direction"}, keys(ins))

	decline := ins[0]
	assert.Equal(t, domain.SeverityHigh, decline.Severity)
	assert.Equal(t, "202402", decline.Values["period"])
	assert.Equal(t, "202401", decline.Values["previous_period"])
	assert.Equal(t, "-46.7%", decline.Values["rate_display"])

	assert.Equal(t, "down", ins[2].Values["direction"])
	assert.Equal(t, "-20.0%", ins[2].Values["change_display"])
}

func TestGenerate_ThresholdsAreStrict(t *testing.T) {
	snap := domain.MetricsSnapshot{
		Periods: []domain.PeriodMetrics{
			{Period: "202401", Volume: 100},
			{Period: "202402", Volume: 80, Growth: ptr(-0.2)},
		},
	}
	ins := NewGenerator(DefaultThresholds(), nil).Generate(snap)
	assert.Equal(t, []string{"trend.direction"}, keys(ins), "a 20% decline does not exceed the 20% threshold")

	custom := DefaultThresholds()
	custom.DeclineThreshold = 0.1
	ins = NewGenerator(custom, nil).Generate(snap)
	assert.Equal(t, []string{"trend.mom_decline", "trend.direction"}, keys(ins))
}

func TestNewGenerator_ZeroThresholdsDefault(t *testing.T) {
	snap := domain.MetricsSnapshot{
		Periods: []domain.PeriodMetrics{
			{Period: "202401", Volume: 100},
			{Period: "202402", Volume: 95, Growth: ptr(-0.05)},
		},
	}
	assert.Equal(t, keys(NewGenerator(DefaultThresholds(), nil).Generate(snap)),
		keys(NewGenerator(Thresholds{}, nil).Generate(snap)))
	assert.NotContains(t, keys(NewGenerator(Thresholds{}, nil).Generate(snap)), "trend.mom_decline")

	partial := NewGenerator(Thresholds{DeclineThreshold: 0.01}, nil)
	assert.Equal(t, 0.01, partial.thresholds.DeclineThreshold)
	assert.Equal(t, DefaultThresholds().EfficiencyOutlierRatio, partial.thresholds.EfficiencyOutlierRatio)
}

func TestGenerate_ConcentrationRules(t *testing.T) {
	entities := []domain.RankedEntity{
		{Rank: 1, EntityID: "P1", DisplayName: "Partner One", Share: 0.6},
		{Rank: 2, EntityID: "P2", Share: 0.25},
		{Rank: 3, EntityID: "P3", Share: 0.15},
	}
	snap := domain.MetricsSnapshot{
		Dimensions: []domain.DimensionMetrics{
			{
				Kind:     domain.KindTPSummary,
				Entities: entities,
				Concentration: domain.Concentration{
					TopN: 2, TopShare: 0.85, Leader: "P1", LeaderShare: 0.6,
				},
			},
			{
				// fewer entities than the window; top share is trivially complete
				Kind:          domain.KindHubSummary,
				Entities:      entities[:1],
				Concentration: domain.Concentration{TopN: 2, TopShare: 1, Leader: "H1", LeaderShare: 0.55},
			},
		},
	}

	ins := NewGenerator(DefaultThresholds(), nil).Generate(snap)
	require.Equal(t, []string{"concentration.single_entity", "concentration.top_n"}, keys(ins))
	assert.Equal(t, "tp_summary", ins[0].Values["dimension"])
	assert.Equal(t, "Partner One", ins[0].Values["display_name"])
	assert.Equal(t, "60.0%", ins[0].Values["share_display"])
	assert.Equal(t, "tp_summary", ins[1].Values["dimension"])
}

func TestGenerate_OrderingBySeverityThenRule(t *testing.T) {
	snap := domain.MetricsSnapshot{
		Totals: domain.Totals{Efficiency: ptr(1.0)},
		Periods: []domain.PeriodMetrics{
			{Period: "202401", Volume: 100},
			{Period: "202402", Volume: 100, Growth: ptr(0)},
		},
		Dimensions: []domain.DimensionMetrics{
			{
				Kind: domain.KindDocSummary,
				Entities: []domain.RankedEntity{
					{EntityID: "850", Share: 0.4, Efficiency: ptr(1.0)},
					{EntityID: "810", Share: 0.3, Efficiency: ptr(2.5)},
					{EntityID: "997", Share: 0.3, Efficiency: ptr(4.0)},
				},
				Concentration: domain.Concentration{TopN: 5, TopShare: 1, LeaderShare: 0.4},
			},
		},
		Seasonality: domain.Seasonality{
			Status: domain.SeasonalityOK,
			Years:  2,
			Months: []domain.MonthSeason{{Month: 12, Name: "December", Peak: true}},
		},
		Reconciliation: domain.Reconciliation{
			CrossReferenceLoaded: true,
			Unresolved:           []domain.UnresolvedID{{Kind: domain.KindHubSummary, EntityID: "H9"}},
		},
		MapConfig:     &domain.MapConfigSummary{Maps: 1, UnmappedPartners: []string{"P2"}},
		PartnerReport: &domain.PartnerReportSummary{MissingFromReport: []string{"P2"}},
	}

	ins := NewGenerator(DefaultThresholds(), nil).Generate(snap)
	assert.Equal(t, []string{
		"efficiency.outlier",
		"reconciliation.unmapped_partners",
		"seasonality.peak",
		"reconciliation.unresolved_ids",
		"reconciliation.partner_report_mismatch",
		"trend.direction",
	}, keys(ins))

	assert.Equal(t, "997", ins[0].Values["entity_id"])
	assert.Equal(t, []string{"December"}, ins[2].Values["months"])
	assert.Equal(t, "flat", ins[5].Values["direction"])

	again := NewGenerator(DefaultThresholds(), nil).Generate(snap)
	assert.Equal(t, ins, again)
}
