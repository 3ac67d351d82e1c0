package domain

import "strings"

// TableKind identifies the role of an extracted table
type TableKind string

const (
	KindDateSummary    TableKind = "date_summary"
	KindDocSummary     TableKind = "doc_summary"
	KindHubSummary     TableKind = "hub_summary"
	KindTPSummary      TableKind = "tp_summary"
	KindTPDocSummary   TableKind = "tp_doc_summary"
	KindCrossReference TableKind = "cross_reference"
	KindPartnerReport  TableKind = "partner_report"
	KindMapConfig      TableKind = "map_config"
)

// SummaryKinds lists the primary-batch kinds in period-total precedence order
var SummaryKinds = []TableKind{
	KindDateSummary,
	KindDocSummary,
	KindHubSummary,
	KindTPSummary,
	KindTPDocSummary,
}

// IsSummary reports whether k is one of the primary-batch summary kinds
func (k TableKind) IsSummary() bool {
	for _, s := range SummaryKinds {
		if s == k {
			return true
		}
	}
	return false
}

// KindForRole maps an auxiliary file role to the table kind it carries
func KindForRole(role FileRole) (TableKind, bool) {
	switch role {
	case RoleCrossReference:
		return KindCrossReference, true
	case RolePartnerReport:
		return KindPartnerReport, true
	case RoleMapConfig:
		return KindMapConfig, true
	}
	return "", false
}

// CellKind is the dynamic type of a cell
type CellKind int

const (
	CellNull CellKind = iota
	CellString
	CellNumber
	CellDate
)

// Cell is one spreadsheet or CSV cell. Text always carries the source text.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// IsEmpty reports whether the cell carries no content
func (c Cell) IsEmpty() bool {
	return c.Kind == CellNull || strings.TrimSpace(c.Text) == ""
}

// RawTable is one tabular dataset extracted from a file. It is consumed by the
// normalizer and not retained afterwards.
type RawTable struct {
	SourceFile string
	SheetName  string
	Kind       TableKind
	Header     []string
	Rows       [][]Cell
	// FirstRow is the 1-based source row number of Rows[0]
	FirstRow int
	// RowNumbers holds the 1-based source row of each entry in Rows
	RowNumbers []int
}

// SourceRow returns the 1-based source row number of data row i
func (t RawTable) SourceRow(i int) int {
	if i < len(t.RowNumbers) {
		return t.RowNumbers[i]
	}
	return t.FirstRow + i
}
