package domain

import (
	"fmt"
	"time"
)

// Severity orders insights; higher is more urgent
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

// String returns the lowercase severity name
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name written by MarshalText
func (s *Severity) UnmarshalText(text []byte) error {
	for _, v := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// InsightCategory groups insights for the overview surface
type InsightCategory string

const (
	CategoryTrend          InsightCategory = "trend"
	CategoryConcentration  InsightCategory = "concentration"
	CategorySeasonality    InsightCategory = "seasonality"
	CategoryEfficiency     InsightCategory = "efficiency"
	CategoryReconciliation InsightCategory = "reconciliation"
)

// Insight is one summary fact. Key names a presentation template; Values fill it.
type Insight struct {
	Category InsightCategory `json:"category"`
	Severity Severity        `json:"severity"`
	Key      string          `json:"key"`
	Values   map[string]any  `json:"values"`
}

// Warning is a file-local or record-local problem that did not abort the run
type Warning struct {
	Type    string `json:"type"`
	File    string `json:"file"`
	Sheet   string `json:"sheet,omitempty"`
	Row     int    `json:"row,omitempty"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// String renders the warning with its location
func (w Warning) String() string {
	loc := w.File
	if w.Sheet != "" {
		loc += "!" + w.Sheet
	}
	if w.Row > 0 {
		loc += fmt.Sprintf(":%d", w.Row)
	}
	if w.Column != "" {
		loc += " [" + w.Column + "]"
	}
	return fmt.Sprintf("%s %s: %s", w.Type, loc, w.Message)
}

// Report is the full output of one analysis run
type Report struct {
	SessionID   string           `json:"session_id"`
	Customer    string           `json:"customer"`
	GeneratedAt time.Time        `json:"generated_at"`
	Files       []FileDescriptor `json:"files"`
	Snapshot    MetricsSnapshot  `json:"snapshot"`
	Insights    []Insight        `json:"insights"`
	Warnings    []Warning        `json:"warnings"`
}
