package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edipulse/internal/aggregator"
	"edipulse/pkg/contracts/domain"
)

type fixture struct {
	period string
	kind   domain.TableKind
	id     string
	docs   int64
	kc     float64
}

func buildTimeline(t *testing.T, rows ...fixture) *aggregator.Timeline {
	t.Helper()
	b := aggregator.NewBuilder()
	for _, r := range rows {
		rec := domain.NormalizedRecord{
			Period:             r.period,
			Kind:               r.kind,
			EntityID:           r.id,
			DocumentCount:      r.docs,
			KilocharacterCount: r.kc,
		}
		if r.kind == domain.KindTPSummary {
			rec.Partner = r.id
		}
		b.Add("Acme_Billing_"+r.period+".xlsx", []domain.NormalizedRecord{rec})
	}
	tl, err := b.Build()
	require.NoError(t, err)
	return tl
}

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur float64
		want      *float64
	}{
		{"growth", 100, 150, ptr(0.5)},
		{"decline", 150, 80, ptr(-70.0 / 150.0)},
		{"flat", 10, 10, ptr(0)},
		{"previous zero", 0, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthRate(tt.prev, tt.cur)
			if tt.want == nil {
				assert.Nil(t, got)
				assert.Equal(t, "N/A", FormatRate(got))
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func ptr(v float64) *float64 { return &v }

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "+50.0%", FormatRate(ptr(0.5)))
	assert.Equal(t, "-46.7%", FormatRate(ptr(-0.4667)))
	assert.Equal(t, "N/A", FormatRate(nil))
	assert.Equal(t, "N/A", FormatEfficiency(nil))
	assert.Equal(t, "2.50", FormatEfficiency(ptr(2.5)))
	assert.Equal(t, "62.5%", FormatShare(0.625))
}

func TestEngine_PeriodSeries(t *testing.T) {
	tl := buildTimeline(t,
		fixture{"202401", domain.KindDateSummary, "2024-01-01", 100, 200},
		fixture{"202401", domain.KindDateSummary, "2024-01-02", 50, 100},
		fixture{"202401", domain.KindHubSummary, "H1", 999, 0},
		fixture{"202402", domain.KindDateSummary, "2024-02-01", 80, 0},
		fixture{"202403", domain.KindHubSummary, "H1", 40, 20},
	)

	snap := NewEngine(Config{}, nil).Compute(tl, domain.AuxiliaryData{})
	require.Len(t, snap.Periods, 3)

	jan, feb, mar := snap.Periods[0], snap.Periods[1], snap.Periods[2]
	assert.Equal(t, domain.KindDateSummary, jan.SourceKind, "date summary wins over hub summary")
	assert.Equal(t, 150.0, jan.Volume)
	assert.Nil(t, jan.Growth)
	require.NotNil(t, jan.Efficiency)
	assert.InDelta(t, 2.0, *jan.Efficiency, 1e-9)

	assert.Equal(t, 80.0, feb.Volume)
	require.NotNil(t, feb.Growth)
	assert.InDelta(t, -0.4667, *feb.Growth, 1e-4)
	assert.InDelta(t, 0.0, *feb.Efficiency, 1e-9)

	assert.Equal(t, domain.KindHubSummary, mar.SourceKind)
	assert.Equal(t, 40.0, mar.Volume)
	assert.InDelta(t, -0.5, *mar.Growth, 1e-9)

	assert.Equal(t, 3, snap.Totals.Periods)
	assert.Equal(t, "202401", snap.Totals.FirstPeriod)
	assert.Equal(t, "202403", snap.Totals.LastPeriod)
	assert.Equal(t, int64(270), snap.Totals.Documents)
	assert.Equal(t, []string{"Acme_Billing_202401.xlsx"}, jan.Sources)
}

func TestEngine_GrowthUndefinedAfterZeroPeriod(t *testing.T) {
	tl := buildTimeline(t,
		fixture{"202401", domain.KindDateSummary, "2024-01-01", 0, 0},
		fixture{"202402", domain.KindDateSummary, "2024-02-01", 10, 0},
	)
	snap := NewEngine(DefaultConfig(), nil).Compute(tl, domain.AuxiliaryData{})
	assert.Nil(t, snap.Periods[1].Growth)
	assert.Nil(t, snap.Periods[0].Efficiency)
}

func TestEngine_MeasureKilocharacters(t *testing.T) {
	tl := buildTimeline(t,
		fixture{"202401", domain.KindTPSummary, "P1", 10, 500},
		fixture{"202401", domain.KindTPSummary, "P2", 90, 100},
	)
	snap := NewEngine(Config{Measure: domain.MeasureKilocharacters}, nil).Compute(tl, domain.AuxiliaryData{})
	dim, ok := snap.Dimension(domain.KindTPSummary)
	require.True(t, ok)
	assert.Equal(t, "P1", dim.Entities[0].EntityID)
	assert.Equal(t, 600.0, snap.Periods[0].Volume)
}

func TestEngine_RankingTieBreakAndConcentration(t *testing.T) {
	tl := buildTimeline(t,
		fixture{"202401", domain.KindTPSummary, "P2", 30, 0},
		fixture{"202401", domain.KindTPSummary, "P1", 30, 0},
		fixture{"202401", domain.KindTPSummary, "P3", 40, 0},
	)

	snap := NewEngine(Config{TopN: 2}, nil).Compute(tl, domain.AuxiliaryData{})
	dim, ok := snap.Dimension(domain.KindTPSummary)
	require.True(t, ok)

	require.Len(t, dim.Entities, 3)
	assert.Equal(t, "P3", dim.Entities[0].EntityID)
	assert.Equal(t, "P1", dim.Entities[1].EntityID, "equal volume ties break by entity ID")
	assert.Equal(t, "P2", dim.Entities[2].EntityID)
	assert.Equal(t, []int{1, 2, 3}, []int{dim.Entities[0].Rank, dim.Entities[1].Rank, dim.Entities[2].Rank})
	assert.Equal(t, 100.0, dim.Total)

	c := dim.Concentration
	assert.Equal(t, 2, c.TopN)
	assert.InDelta(t, 0.7, c.TopShare, 1e-9)
	assert.InDelta(t, 0.16+0.09+0.09, c.HHI, 1e-9)
	assert.Equal(t, "P3", c.Leader)
	assert.InDelta(t, 0.4, c.LeaderShare, 1e-9)
	assert.GreaterOrEqual(t, c.TopShare, 0.0)
	assert.LessOrEqual(t, c.TopShare, 1.0)
}

func TestEngine_EntityPeriodsAndDisplay(t *testing.T) {
	tl := buildTimeline(t,
		fixture{"202401", domain.KindHubSummary, "H1", 10, 30},
		fixture{"202402", domain.KindHubSummary, "H1", 20, 0},
		fixture{"202402", domain.KindHubSummary, "H2", 5, 5},
	)
	xref := domain.NewCrossReferenceIndex([]domain.CrossReferenceEntry{{ID: "H1", Name: "North Hub", Region: "North"}})

	snap := NewEngine(DefaultConfig(), nil).Compute(tl, domain.AuxiliaryData{CrossReference: xref})
	dim, ok := snap.Dimension(domain.KindHubSummary)
	require.True(t, ok)

	h1 := dim.Entities[0]
	assert.Equal(t, "North Hub", h1.DisplayName)
	assert.Equal(t, "North", h1.Region)
	require.Len(t, h1.Periods, 2)
	assert.InDelta(t, 3.0, *h1.Periods[0].Efficiency, 1e-9)
	require.NotNil(t, h1.LatestGrowth)
	assert.InDelta(t, 1.0, *h1.LatestGrowth, 1e-9)

	h2 := dim.Entities[1]
	assert.Equal(t, "H2", h2.DisplayName, "falls back to the raw ID")
	assert.Nil(t, h2.LatestGrowth, "no volume in the previous period")

	assert.True(t, snap.Reconciliation.CrossReferenceLoaded)
	assert.Equal(t, []domain.UnresolvedID{{Kind: domain.KindHubSummary, EntityID: "H2"}}, snap.Reconciliation.Unresolved)
}

func TestEngine_Seasonality(t *testing.T) {
	t.Run("single year is insufficient", func(t *testing.T) {
		tl := buildTimeline(t,
			fixture{"202401", domain.KindDateSummary, "2024-01-01", 10, 0},
			fixture{"202402", domain.KindDateSummary, "2024-02-01", 90, 0},
		)
		snap := NewEngine(DefaultConfig(), nil).Compute(tl, domain.AuxiliaryData{})
		assert.Equal(t, domain.SeasonalityInsufficientData, snap.Seasonality.Status)
		assert.Empty(t, snap.Seasonality.Months)
		assert.Empty(t, snap.Seasonality.Peaks())
	})

	t.Run("december peak across two years", func(t *testing.T) {
		var rows []fixture
		for _, year := range []string{"2023", "2024"} {
			for _, month := range []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11"} {
				rows = append(rows, fixture{year + month, domain.KindDateSummary, year + "-" + month + "-01", 100, 0})
			}
			rows = append(rows, fixture{year + "12", domain.KindDateSummary, year + "-12-01", 400, 0})
		}

		snap := NewEngine(DefaultConfig(), nil).Compute(buildTimeline(t, rows...), domain.AuxiliaryData{})
		s := snap.Seasonality
		assert.Equal(t, domain.SeasonalityOK, s.Status)
		assert.Equal(t, 2, s.Years)
		assert.InDelta(t, 125.0, s.OverallMean, 1e-9)
		require.Len(t, s.Months, 12)

		peaks := s.Peaks()
		require.Len(t, peaks, 1)
		assert.Equal(t, 12, peaks[0].Month)
		assert.Equal(t, "December", peaks[0].Name)
		assert.Equal(t, 2, peaks[0].Samples)
		assert.InDelta(t, 0.0, peaks[0].StdDev, 1e-9)
	})
}

func TestEngine_PartnerReportAndMapConfig(t *testing.T) {
	tl := buildTimeline(t,
		fixture{"202401", domain.KindTPSummary, "P1", 10, 0},
		fixture{"202401", domain.KindTPSummary, "P2", 5, 0},
	)
	aux := domain.AuxiliaryData{
		PartnerReport: []domain.PartnerReportEntry{
			{Partner: "p1", Method: "AS2", MailboxType: "Prod", Period: "202401", Volume: 7},
			{Partner: "P9", Method: "SFTP", Period: "202401", Volume: 3},
			{Partner: "P9", Method: "AS2", Period: "202401", Volume: 1},
		},
		MapConfig: []domain.MapConfigEntry{
			{Direction: "inbound", SenderID: "P1", ReceiverID: "ACME", DocumentType: "850"},
			{Direction: "outbound", SenderID: "ACME", ReceiverID: "P7", DocumentType: "810"},
			{Direction: "inbound", SenderID: "P7", ReceiverID: "ACME", DocumentType: "850"},
		},
	}

	snap := NewEngine(DefaultConfig(), nil).Compute(tl, aux)

	pr := snap.PartnerReport
	require.NotNil(t, pr)
	assert.Equal(t, 11.0, pr.Total)
	assert.Equal(t, []domain.NamedVolume{{Name: "AS2", Volume: 8}, {Name: "SFTP", Volume: 3}}, pr.ByMethod)
	assert.Equal(t, []domain.NamedVolume{{Name: "Prod", Volume: 7}}, pr.ByMailboxType)
	assert.Equal(t, []string{"P9"}, pr.MissingFromActivity)
	assert.Equal(t, []string{"P2"}, pr.MissingFromReport)

	mc := snap.MapConfig
	require.NotNil(t, mc)
	assert.Equal(t, 3, mc.Maps)
	assert.Equal(t, []domain.NamedCount{{Name: "inbound", Count: 2}, {Name: "outbound", Count: 1}}, mc.ByDirection)
	assert.Equal(t, []domain.NamedCount{{Name: "850", Count: 2}, {Name: "810", Count: 1}}, mc.ByDocumentType)
	assert.Equal(t, []string{"P2"}, mc.UnmappedPartners)

	assert.False(t, snap.Reconciliation.CrossReferenceLoaded)
	assert.Empty(t, snap.Reconciliation.Unresolved)
}
