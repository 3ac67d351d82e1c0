package analytics

import (
	"sort"
	"strings"

	"edipulse/internal/aggregator"
	"edipulse/pkg/contracts/domain"
)

// RankedKinds are the dimensions that get rankings, in output order
var RankedKinds = []domain.TableKind{
	domain.KindHubSummary,
	domain.KindTPSummary,
	domain.KindDocSummary,
	domain.KindTPDocSummary,
}

type entityAcc struct {
	id        string
	name      string
	partner   string
	docType   string
	docs      int64
	kc        float64
	charge    float64
	byPeriod  map[string]*domain.EntityPeriod
	periodSeq []string
}

func (e *Engine) dimensions(t *aggregator.Timeline, xref domain.CrossReferenceIndex) []domain.DimensionMetrics {
	var out []domain.DimensionMetrics
	for _, kind := range RankedKinds {
		if !t.HasKind(kind) {
			continue
		}
		out = append(out, e.rankDimension(t, kind, xref))
	}
	return out
}

func (e *Engine) rankDimension(t *aggregator.Timeline, kind domain.TableKind, xref domain.CrossReferenceIndex) domain.DimensionMetrics {
	periods := t.Periods()
	accs := make(map[string]*entityAcc)
	var ids []string

	for _, p := range periods {
		for _, r := range t.Records(p, kind) {
			acc, ok := accs[r.EntityID]
			if !ok {
				acc = &entityAcc{id: r.EntityID, byPeriod: make(map[string]*domain.EntityPeriod)}
				accs[r.EntityID] = acc
				ids = append(ids, r.EntityID)
			}
			if r.Name != "" {
				acc.name = r.Name
			}
			if r.Partner != "" {
				acc.partner = r.Partner
			}
			if r.DocumentType != "" {
				acc.docType = r.DocumentType
			}
			acc.docs += r.DocumentCount
			acc.kc += r.KilocharacterCount
			acc.charge += r.Charge

			ep, ok := acc.byPeriod[p]
			if !ok {
				ep = &domain.EntityPeriod{Period: p}
				acc.byPeriod[p] = ep
				acc.periodSeq = append(acc.periodSeq, p)
			}
			ep.Documents += r.DocumentCount
			ep.Kilocharacters += r.KilocharacterCount
		}
	}

	dim := domain.DimensionMetrics{Kind: kind}
	entities := make([]domain.RankedEntity, 0, len(ids))
	for _, id := range ids {
		acc := accs[id]
		re := domain.RankedEntity{
			EntityID:       id,
			Documents:      acc.docs,
			Kilocharacters: acc.kc,
			Charge:         acc.charge,
			Volume:         volume(e.cfg.Measure, acc.docs, acc.kc),
			Efficiency:     Efficiency(acc.kc, acc.docs),
		}
		re.DisplayName, re.Region = displayFor(kind, acc, xref)

		for _, p := range acc.periodSeq {
			ep := *acc.byPeriod[p]
			ep.Volume = volume(e.cfg.Measure, ep.Documents, ep.Kilocharacters)
			ep.Efficiency = Efficiency(ep.Kilocharacters, ep.Documents)
			re.Periods = append(re.Periods, ep)
		}
		if n := len(periods); n >= 2 {
			re.LatestGrowth = GrowthRate(periodVolume(re.Periods, periods[n-2]), periodVolume(re.Periods, periods[n-1]))
		}

		dim.Total += re.Volume
		entities = append(entities, re)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Volume != entities[j].Volume {
			return entities[i].Volume > entities[j].Volume
		}
		return entities[i].EntityID < entities[j].EntityID
	})
	for i := range entities {
		entities[i].Rank = i + 1
		if dim.Total > 0 {
			entities[i].Share = entities[i].Volume / dim.Total
		}
	}

	dim.Entities = entities
	dim.Concentration = concentration(entities, e.cfg.TopN)
	return dim
}

// displayFor resolves a display name and region via the cross-reference index.
// Partner-by-document entities resolve their partner part.
func displayFor(kind domain.TableKind, acc *entityAcc, xref domain.CrossReferenceIndex) (string, string) {
	if kind == domain.KindTPDocSummary {
		partner := acc.partner
		if partner == "" {
			partner, _, _ = strings.Cut(acc.id, "|")
		}
		region := ""
		if entry, ok := xref.Lookup(partner); ok {
			region = entry.Region
		}
		return xref.Display(partner, acc.name) + " | " + acc.docType, region
	}

	region := ""
	if entry, ok := xref.Lookup(acc.id); ok {
		region = entry.Region
	}
	return xref.Display(acc.id, acc.name), region
}

func periodVolume(eps []domain.EntityPeriod, period string) float64 {
	for _, ep := range eps {
		if ep.Period == period {
			return ep.Volume
		}
	}
	return 0
}

// concentration computes top-N share and the Herfindahl-Hirschman index
// (sum of squared shares, in [0,1]) over entities already sorted by volume.
func concentration(entities []domain.RankedEntity, topN int) domain.Concentration {
	c := domain.Concentration{TopN: topN}
	if len(entities) == 0 {
		return c
	}
	for i, re := range entities {
		if i < topN {
			c.TopShare += re.Share
		}
		c.HHI += re.Share * re.Share
	}
	if c.TopShare > 1 {
		c.TopShare = 1
	}
	c.Leader = entities[0].EntityID
	c.LeaderShare = entities[0].Share
	return c
}
