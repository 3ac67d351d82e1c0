package insights

import (
	"edipulse/internal/analytics"
	"edipulse/pkg/contracts/domain"
)

// maxListed caps ID lists carried in insight values
const maxListed = 10

func largestDecline(th Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	idx := -1
	for i, pm := range snap.Periods {
		if pm.Growth == nil {
			continue
		}
		if idx < 0 || *pm.Growth < *snap.Periods[idx].Growth {
			idx = i
		}
	}
	if idx < 0 || *snap.Periods[idx].Growth >= -th.DeclineThreshold {
		return domain.Insight{}, false
	}
	return periodChange(snap, idx, domain.SeverityHigh, "trend.mom_decline"), true
}

func largestGrowth(th Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	idx := -1
	for i, pm := range snap.Periods {
		if pm.Growth == nil {
			continue
		}
		if idx < 0 || *pm.Growth > *snap.Periods[idx].Growth {
			idx = i
		}
	}
	if idx < 0 || *snap.Periods[idx].Growth <= th.GrowthThreshold {
		return domain.Insight{}, false
	}
	return periodChange(snap, idx, domain.SeverityMedium, "trend.mom_growth"), true
}

func periodChange(snap domain.MetricsSnapshot, idx int, sev domain.Severity, key string) domain.Insight {
	cur, prev := snap.Periods[idx], snap.Periods[idx-1]
	return domain.Insight{
		Category: domain.CategoryTrend,
		Severity: sev,
		Key:      key,
		Values: map[string]any{
			"period":          cur.Period,
			"previous_period": prev.Period,
			"volume":          cur.Volume,
			"previous_volume": prev.Volume,
			"rate":            *cur.Growth,
			"rate_display":    analytics.FormatRate(cur.Growth),
			"measure":         string(snap.Measure),
		},
	}
}

func dominantEntity(th Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	var best *domain.DimensionMetrics
	for i := range snap.Dimensions {
		d := &snap.Dimensions[i]
		if len(d.Entities) == 0 || d.Concentration.LeaderShare <= th.LeaderShareThreshold {
			continue
		}
		if best == nil || d.Concentration.LeaderShare > best.Concentration.LeaderShare {
			best = d
		}
	}
	if best == nil {
		return domain.Insight{}, false
	}
	leader := best.Entities[0]
	return domain.Insight{
		Category: domain.CategoryConcentration,
		Severity: domain.SeverityHigh,
		Key:      "concentration.single_entity",
		Values: map[string]any{
			"dimension":     string(best.Kind),
			"entity_id":     leader.EntityID,
			"display_name":  leader.DisplayName,
			"share":         leader.Share,
			"share_display": analytics.FormatShare(leader.Share),
		},
	}, true
}

// topConcentration only considers dimensions with more entities than the
// top-N window, where the share is not trivially complete
func topConcentration(th Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	var best *domain.DimensionMetrics
	for i := range snap.Dimensions {
		d := &snap.Dimensions[i]
		if len(d.Entities) <= d.Concentration.TopN || d.Concentration.TopShare <= th.TopShareThreshold {
			continue
		}
		if best == nil || d.Concentration.TopShare > best.Concentration.TopShare {
			best = d
		}
	}
	if best == nil {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Category: domain.CategoryConcentration,
		Severity: domain.SeverityMedium,
		Key:      "concentration.top_n",
		Values: map[string]any{
			"dimension":     string(best.Kind),
			"top_n":         best.Concentration.TopN,
			"entities":      len(best.Entities),
			"share":         best.Concentration.TopShare,
			"share_display": analytics.FormatShare(best.Concentration.TopShare),
			"hhi":           best.Concentration.HHI,
		},
	}, true
}

func seasonalPeak(_ Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	if snap.Seasonality.Status != domain.SeasonalityOK {
		return domain.Insight{}, false
	}
	peaks := snap.Seasonality.Peaks()
	if len(peaks) == 0 {
		return domain.Insight{}, false
	}
	months := make([]string, len(peaks))
	for i, p := range peaks {
		months[i] = p.Name
	}
	return domain.Insight{
		Category: domain.CategorySeasonality,
		Severity: domain.SeverityLow,
		Key:      "seasonality.peak",
		Values: map[string]any{
			"months":       months,
			"years":        snap.Seasonality.Years,
			"overall_mean": snap.Seasonality.OverallMean,
		},
	}, true
}

func overallTrend(_ Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	if len(snap.Periods) < 2 {
		return domain.Insight{}, false
	}
	first, last := snap.Periods[0], snap.Periods[len(snap.Periods)-1]

	direction := "flat"
	switch {
	case last.Volume > first.Volume:
		direction = "up"
	case last.Volume < first.Volume:
		direction = "down"
	}
	change := analytics.GrowthRate(first.Volume, last.Volume)

	return domain.Insight{
		Category: domain.CategoryTrend,
		Severity: domain.SeverityInfo,
		Key:      "trend.direction",
		Values: map[string]any{
			"direction":      direction,
			"first_period":   first.Period,
			"last_period":    last.Period,
			"first_volume":   first.Volume,
			"last_volume":    last.Volume,
			"change_display": analytics.FormatRate(change),
		},
	}, true
}

func efficiencyOutlier(th Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	overall := snap.Totals.Efficiency
	if overall == nil || *overall <= 0 {
		return domain.Insight{}, false
	}

	var (
		bestDim   domain.TableKind
		bestRatio float64
		best      domain.RankedEntity
	)
	for _, d := range snap.Dimensions {
		for _, re := range d.Entities {
			if re.Efficiency == nil {
				continue
			}
			ratio := *re.Efficiency / *overall
			if ratio > th.EfficiencyOutlierRatio && ratio > bestRatio {
				bestDim, bestRatio, best = d.Kind, ratio, re
			}
		}
	}
	if bestRatio == 0 {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Category: domain.CategoryEfficiency,
		Severity: domain.SeverityMedium,
		Key:      "efficiency.outlier",
		Values: map[string]any{
			"dimension":    string(bestDim),
			"entity_id":    best.EntityID,
			"display_name": best.DisplayName,
			"efficiency":   *best.Efficiency,
			"overall":      *overall,
			"ratio":        bestRatio,
		},
	}, true
}

func unresolvedReferences(_ Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	unresolved := snap.Reconciliation.Unresolved
	if len(unresolved) == 0 {
		return domain.Insight{}, false
	}
	ids := make([]string, 0, min(len(unresolved), maxListed))
	for _, u := range unresolved[:min(len(unresolved), maxListed)] {
		ids = append(ids, u.EntityID)
	}
	return domain.Insight{
		Category: domain.CategoryReconciliation,
		Severity: domain.SeverityLow,
		Key:      "reconciliation.unresolved_ids",
		Values: map[string]any{
			"count": len(unresolved),
			"ids":   ids,
		},
	}, true
}

func unmappedPartners(_ Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	if snap.MapConfig == nil || len(snap.MapConfig.UnmappedPartners) == 0 {
		return domain.Insight{}, false
	}
	partners := snap.MapConfig.UnmappedPartners
	return domain.Insight{
		Category: domain.CategoryReconciliation,
		Severity: domain.SeverityMedium,
		Key:      "reconciliation.unmapped_partners",
		Values: map[string]any{
			"count":    len(partners),
			"partners": partners[:min(len(partners), maxListed)],
		},
	}, true
}

func partnerReportMismatch(_ Thresholds, snap domain.MetricsSnapshot) (domain.Insight, bool) {
	pr := snap.PartnerReport
	if pr == nil || len(pr.MissingFromActivity)+len(pr.MissingFromReport) == 0 {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Category: domain.CategoryReconciliation,
		Severity: domain.SeverityLow,
		Key:      "reconciliation.partner_report_mismatch",
		Values: map[string]any{
			"missing_from_activity": len(pr.MissingFromActivity),
			"missing_from_report":   len(pr.MissingFromReport),
		},
	}, true
}
