package aggregator

import (
	"fmt"
	"sort"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

type bucketKey struct {
	period string
	kind   domain.TableKind
}

type bucket struct {
	order []string
	byID  map[string]*domain.NormalizedRecord
}

// Builder folds normalized records into a Timeline. It is not safe for
// concurrent use; files are added serially in batch order.
type Builder struct {
	buckets map[bucketKey]*bucket
	sources map[string][]string
	seen    map[string]map[string]bool
	count   int
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		buckets: make(map[bucketKey]*bucket),
		sources: make(map[string][]string),
		seen:    make(map[string]map[string]bool),
	}
}

// Add folds the records of one file. A repeated entity within the same
// period and kind keeps the later file's labels and sums its counts.
func (b *Builder) Add(fileName string, records []domain.NormalizedRecord) {
	for _, rec := range records {
		key := bucketKey{period: rec.Period, kind: rec.Kind}
		bk, ok := b.buckets[key]
		if !ok {
			bk = &bucket{byID: make(map[string]*domain.NormalizedRecord)}
			b.buckets[key] = bk
		}

		if existing, ok := bk.byID[rec.EntityID]; ok {
			merge(existing, rec)
		} else {
			r := rec
			r.Warnings = append([]string(nil), rec.Warnings...)
			bk.byID[rec.EntityID] = &r
			bk.order = append(bk.order, rec.EntityID)
			b.count++
		}

		if b.seen[rec.Period] == nil {
			b.seen[rec.Period] = make(map[string]bool)
		}
		if !b.seen[rec.Period][fileName] {
			b.seen[rec.Period][fileName] = true
			b.sources[rec.Period] = append(b.sources[rec.Period], fileName)
		}
	}
}

func merge(dst *domain.NormalizedRecord, src domain.NormalizedRecord) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Date != "" {
		dst.Date = src.Date
	}
	if src.Partner != "" {
		dst.Partner = src.Partner
	}
	if src.DocumentType != "" {
		dst.DocumentType = src.DocumentType
	}
	if src.Direction != "" {
		dst.Direction = src.Direction
	}
	dst.SourceFile = src.SourceFile
	dst.Row = src.Row
	dst.DocumentCount += src.DocumentCount
	dst.KilocharacterCount += src.KilocharacterCount
	dst.Charge += src.Charge
	dst.Warnings = append(dst.Warnings, src.Warnings...)
}

// Build sorts the folded data once and returns the immutable timeline
func (b *Builder) Build() (*Timeline, error) {
	if b.count == 0 {
		return nil, apierrors.NewEmptyDatasetError("batch produced no records")
	}

	t := &Timeline{
		records: make(map[string]map[domain.TableKind][]domain.NormalizedRecord, len(b.sources)),
		sources: make(map[string][]string, len(b.sources)),
		count:   b.count,
	}

	for key, bk := range b.buckets {
		recs := make([]domain.NormalizedRecord, 0, len(bk.order))
		for _, id := range bk.order {
			recs = append(recs, *bk.byID[id])
		}
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].EntityID < recs[j].EntityID })

		if t.records[key.period] == nil {
			t.records[key.period] = make(map[domain.TableKind][]domain.NormalizedRecord)
		}
		t.records[key.period][key.kind] = recs
	}

	for period, files := range b.sources {
		t.periods = append(t.periods, period)
		t.sources[period] = append([]string(nil), files...)
	}
	sort.Strings(t.periods)
	return t, nil
}

// Timeline is the ordered sequence of periods with per-kind records.
// It is read-only once built.
type Timeline struct {
	periods []string
	records map[string]map[domain.TableKind][]domain.NormalizedRecord
	sources map[string][]string
	count   int
}

// Periods returns the periods in ascending order
func (t *Timeline) Periods() []string {
	return append([]string(nil), t.periods...)
}

// Records returns a copy of the records of one kind in a period, sorted by entity ID
func (t *Timeline) Records(period string, kind domain.TableKind) []domain.NormalizedRecord {
	return append([]domain.NormalizedRecord(nil), t.records[period][kind]...)
}

// Kinds returns the kinds present in a period, in summary precedence order
func (t *Timeline) Kinds(period string) []domain.TableKind {
	var kinds []domain.TableKind
	for _, k := range domain.SummaryKinds {
		if len(t.records[period][k]) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// HasKind reports whether any period carries records of kind
func (t *Timeline) HasKind(kind domain.TableKind) bool {
	for _, p := range t.periods {
		if len(t.records[p][kind]) > 0 {
			return true
		}
	}
	return false
}

// Sources returns the distinct files, in batch order, that contributed to a period
func (t *Timeline) Sources(period string) []string {
	return append([]string(nil), t.sources[period]...)
}

// RecordCount returns the number of distinct records after merging
func (t *Timeline) RecordCount() int {
	return t.count
}

// FirstPeriod and LastPeriod bound the timeline
func (t *Timeline) FirstPeriod() string { return t.periods[0] }

func (t *Timeline) LastPeriod() string { return t.periods[len(t.periods)-1] }

// String summarizes the timeline for logs
func (t *Timeline) String() string {
	return fmt.Sprintf("timeline %s..%s (%d periods, %d records)", t.FirstPeriod(), t.LastPeriod(), len(t.periods), t.count)
}
