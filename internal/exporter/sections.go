package exporter

import (
	"time"

	"edipulse/pkg/contracts/domain"
)

// Section is one tabular part of a report. Cells hold string, int, int64,
// float64, ratio, *float64, bool, []string or nil.
type Section struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]any
}

// Sections flattens a report into its exported tables, in sheet order
func Sections(r *domain.Report) []Section {
	return []Section{
		overviewSection(r),
		periodsSection(r.Snapshot),
		rankingsSection(r.Snapshot),
		seasonalitySection(r.Snapshot.Seasonality),
		insightsSection(r.Insights),
		warningsSection(r.Warnings),
	}
}

func overviewSection(r *domain.Report) Section {
	t := r.Snapshot.Totals
	return Section{
		Name:    "overview",
		Title:   "Overview",
		Headers: []string{"Field", "Value"},
		Rows: [][]any{
			{"Session", r.SessionID},
			{"Customer", r.Customer},
			{"Generated At", r.GeneratedAt.UTC().Format(time.RFC3339)},
			{"Measure", string(r.Snapshot.Measure)},
			{"Periods", t.Periods},
			{"First Period", t.FirstPeriod},
			{"Last Period", t.LastPeriod},
			{"Documents", t.Documents},
			{"Kilocharacters", t.Kilocharacters},
			{"Charge", t.Charge},
			{"Volume", t.Volume},
			{"Efficiency", t.Efficiency},
			{"Files", len(r.Files)},
			{"Insights", len(r.Insights)},
			{"Warnings", len(r.Warnings)},
		},
	}
}

func periodsSection(s domain.MetricsSnapshot) Section {
	sec := Section{
		Name:  "periods",
		Title: "Periods",
		Headers: []string{"Period", "Source Kind", "Documents", "Kilocharacters", "Charge", "Volume",
			"Growth", "Document Growth", "KC Growth", "Efficiency", "Sources"},
	}
	for _, p := range s.Periods {
		sec.Rows = append(sec.Rows, []any{
			p.Period, string(p.SourceKind), p.Documents, p.Kilocharacters, p.Charge, p.Volume,
			p.Growth, p.DocumentGrowth, p.KilocharacterGrowth, p.Efficiency, p.Sources,
		})
	}
	return sec
}

func rankingsSection(s domain.MetricsSnapshot) Section {
	sec := Section{
		Name:  "rankings",
		Title: "Rankings",
		Headers: []string{"Dimension", "Rank", "Entity ID", "Display Name", "Region", "Documents",
			"Kilocharacters", "Charge", "Volume", "Share", "Efficiency", "Latest Growth"},
	}
	for _, d := range s.Dimensions {
		for _, e := range d.Entities {
			sec.Rows = append(sec.Rows, []any{
				string(d.Kind), e.Rank, e.EntityID, e.DisplayName, e.Region, e.Documents,
				e.Kilocharacters, e.Charge, e.Volume, ratio(e.Share), e.Efficiency, e.LatestGrowth,
			})
		}
	}
	return sec
}

func seasonalitySection(s domain.Seasonality) Section {
	sec := Section{
		Name:    "seasonality",
		Title:   "Seasonality",
		Headers: []string{"Month", "Name", "Samples", "Mean", "Std Dev", "Peak"},
	}
	for _, m := range s.Months {
		sec.Rows = append(sec.Rows, []any{m.Month, m.Name, m.Samples, m.Mean, m.StdDev, m.Peak})
	}
	return sec
}

func insightsSection(ins []domain.Insight) Section {
	sec := Section{
		Name:    "insights",
		Title:   "Insights",
		Headers: []string{"Severity", "Category", "Key", "Values"},
	}
	for _, in := range ins {
		sec.Rows = append(sec.Rows, []any{in.Severity.String(), string(in.Category), in.Key, formatValues(in.Values)})
	}
	return sec
}

func warningsSection(ws []domain.Warning) Section {
	sec := Section{
		Name:    "warnings",
		Title:   "Warnings",
		Headers: []string{"Type", "File", "Sheet", "Row", "Column", "Message"},
	}
	for _, w := range ws {
		var row any
		if w.Row > 0 {
			row = w.Row
		}
		sec.Rows = append(sec.Rows, []any{w.Type, w.File, w.Sheet, row, w.Column, w.Message})
	}
	return sec
}

// records renders the section rows as CSV text
func (s Section) records() [][]string {
	out := make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatValue(v)
		}
		out[i] = rec
	}
	return out
}
