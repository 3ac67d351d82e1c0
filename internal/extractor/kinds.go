package extractor

import (
	"regexp"
	"strings"

	"edipulse/pkg/contracts/domain"
)

// kindAlias pairs a table kind with the squashed sheet-name fragments that select it.
// Order matters: tp_doc must be tested before tp and doc.
type kindAlias struct {
	kind      domain.TableKind
	contains  []string
	exactOnly []string
}

var sheetAliases = []kindAlias{
	{
		kind:      domain.KindTPDocSummary,
		contains:  []string{"tpdocsummary", "partnerdocsummary", "tradingpartnerdoc", "tpdocument"},
		exactOnly: []string{"tpdoc", "tpdocs"},
	},
	{
		kind:      domain.KindDateSummary,
		contains:  []string{"datesummary", "dailysummary"},
		exactOnly: []string{"date", "daily", "dates"},
	},
	{
		kind:      domain.KindDocSummary,
		contains:  []string{"docsummary", "documentsummary", "doctypesummary"},
		exactOnly: []string{"doc", "docs", "documents"},
	},
	{
		kind:      domain.KindHubSummary,
		contains:  []string{"hubsummary"},
		exactOnly: []string{"hub", "hubs"},
	},
	{
		kind:      domain.KindTPSummary,
		contains:  []string{"tpsummary", "partnersummary", "tradingpartnersummary"},
		exactOnly: []string{"tp", "partners", "tradingpartners"},
	},
}

var squashReplacer = strings.NewReplacer(" ", "", "_", "", "-", "", "\u00a0", "")

// squash lowercases s and drops spaces, underscores and hyphens
func squash(s string) string {
	return squashReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// KindForSheet resolves a worksheet name to a primary summary kind
func KindForSheet(name string) (domain.TableKind, bool) {
	s := squash(name)
	if s == "" {
		return "", false
	}
	for _, a := range sheetAliases {
		for _, exact := range a.exactOnly {
			if s == exact {
				return a.kind, true
			}
		}
		for _, frag := range a.contains {
			if strings.Contains(s, frag) {
				return a.kind, true
			}
		}
	}
	return "", false
}

// KindForDelimited resolves the kind of a primary CSV from its file-name type segment
func KindForDelimited(detectedType string) domain.TableKind {
	if kind, ok := KindForSheet(detectedType); ok {
		return kind
	}
	return domain.KindDateSummary
}

var totalRowPattern = regexp.MustCompile(`(?i)^(grand\s+)?(sub)?total\b`)

// isTotalRow reports whether the leading cell labels a total or subtotal line
func isTotalRow(row []domain.Cell) bool {
	for _, c := range row {
		if c.IsEmpty() {
			continue
		}
		return totalRowPattern.MatchString(strings.TrimSpace(c.Text))
	}
	return false
}

func isEmptyRow(row []domain.Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
