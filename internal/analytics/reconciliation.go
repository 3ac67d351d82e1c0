package analytics

import (
	"sort"
	"strings"

	"edipulse/internal/aggregator"
	"edipulse/pkg/contracts/domain"
)

// reconcile lists hub and partner IDs with traffic that the cross-reference lacks
func reconcile(dims []domain.DimensionMetrics, xref domain.CrossReferenceIndex) domain.Reconciliation {
	rec := domain.Reconciliation{CrossReferenceLoaded: len(xref) > 0}
	if !rec.CrossReferenceLoaded {
		return rec
	}
	for _, d := range dims {
		if d.Kind != domain.KindHubSummary && d.Kind != domain.KindTPSummary {
			continue
		}
		var missing []string
		for _, re := range d.Entities {
			if !hasTraffic(re) {
				continue
			}
			if _, ok := xref.Lookup(re.EntityID); !ok {
				missing = append(missing, re.EntityID)
			}
		}
		sort.Strings(missing)
		for _, id := range missing {
			rec.Unresolved = append(rec.Unresolved, domain.UnresolvedID{Kind: d.Kind, EntityID: id})
		}
	}
	return rec
}

func hasTraffic(re domain.RankedEntity) bool {
	return re.Documents > 0 || re.Kilocharacters > 0
}

// activePartners returns the sorted partner IDs with traffic, from the partner
// dimension when present, otherwise from partner-by-document records
func activePartners(t *aggregator.Timeline, dims []domain.DimensionMetrics) []string {
	for _, d := range dims {
		if d.Kind != domain.KindTPSummary {
			continue
		}
		var ids []string
		for _, re := range d.Entities {
			if hasTraffic(re) {
				ids = append(ids, re.EntityID)
			}
		}
		sort.Strings(ids)
		return ids
	}

	seen := make(map[string]bool)
	var ids []string
	for _, p := range t.Periods() {
		for _, r := range t.Records(p, domain.KindTPDocSummary) {
			if r.Partner == "" || seen[r.Partner] || (r.DocumentCount == 0 && r.KilocharacterCount == 0) {
				continue
			}
			seen[r.Partner] = true
			ids = append(ids, r.Partner)
		}
	}
	sort.Strings(ids)
	return ids
}

func partnerKey(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func summarizePartnerReport(entries []domain.PartnerReportEntry, active []string) domain.PartnerReportSummary {
	var sum domain.PartnerReportSummary
	byMethod := make(map[string]float64)
	byMailbox := make(map[string]float64)
	byPartner := make(map[string]float64)
	reported := make(map[string]bool)

	for _, e := range entries {
		sum.Total += e.Volume
		byMethod[labelOr(e.Method)] += e.Volume
		if e.MailboxType != "" {
			byMailbox[e.MailboxType] += e.Volume
		}
		byPartner[e.Partner] += e.Volume
		reported[partnerKey(e.Partner)] = true
	}
	sum.ByMethod = sortedVolumes(byMethod)
	sum.ByMailboxType = sortedVolumes(byMailbox)
	sum.ByPartner = sortedVolumes(byPartner)

	activeSet := make(map[string]bool, len(active))
	for _, id := range active {
		activeSet[partnerKey(id)] = true
		if !reported[partnerKey(id)] {
			sum.MissingFromReport = append(sum.MissingFromReport, id)
		}
	}
	for _, nv := range sum.ByPartner {
		if !activeSet[partnerKey(nv.Name)] {
			sum.MissingFromActivity = append(sum.MissingFromActivity, nv.Name)
		}
	}
	sort.Strings(sum.MissingFromActivity)
	return sum
}

func summarizeMapConfig(entries []domain.MapConfigEntry, active []string) domain.MapConfigSummary {
	sum := domain.MapConfigSummary{Maps: len(entries)}
	byDirection := make(map[string]int)
	byDocType := make(map[string]int)
	mapped := make(map[string]bool)

	for _, e := range entries {
		byDirection[labelOr(e.Direction)]++
		byDocType[labelOr(e.DocumentType)]++
		if e.SenderID != "" {
			mapped[partnerKey(e.SenderID)] = true
		}
		if e.ReceiverID != "" {
			mapped[partnerKey(e.ReceiverID)] = true
		}
	}
	sum.ByDirection = sortedCounts(byDirection)
	sum.ByDocumentType = sortedCounts(byDocType)

	for _, id := range active {
		if !mapped[partnerKey(id)] {
			sum.UnmappedPartners = append(sum.UnmappedPartners, id)
		}
	}
	return sum
}

func labelOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}

func sortedVolumes(m map[string]float64) []domain.NamedVolume {
	out := make([]domain.NamedVolume, 0, len(m))
	for name, v := range m {
		out = append(out, domain.NamedVolume{Name: name, Volume: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedCounts(m map[string]int) []domain.NamedCount {
	out := make([]domain.NamedCount, 0, len(m))
	for name, c := range m {
		out = append(out, domain.NamedCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
