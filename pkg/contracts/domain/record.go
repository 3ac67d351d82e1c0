package domain

import "regexp"

var periodPattern = regexp.MustCompile(`^\d{4}(0[1-9]|1[0-2])$`)

// IsValidPeriod reports whether p is a canonical YYYYMM period
func IsValidPeriod(p string) bool {
	return periodPattern.MatchString(p)
}

// NormalizedRecord is one row per (period, entity) in canonical shape
type NormalizedRecord struct {
	Period             string    `json:"period"`
	Kind               TableKind `json:"kind"`
	EntityID           string    `json:"entity_id"`
	Name               string    `json:"name,omitempty"`
	Date               string    `json:"date,omitempty"`
	Partner            string    `json:"partner,omitempty"`
	DocumentType       string    `json:"document_type,omitempty"`
	Direction          string    `json:"direction,omitempty"`
	DocumentCount      int64     `json:"document_count"`
	KilocharacterCount float64   `json:"kilocharacter_count"`
	Charge             float64   `json:"charge,omitempty"`
	SourceFile         string    `json:"source_file"`
	Row                int       `json:"row"`
	Warnings           []string  `json:"warnings,omitempty"`
}

// Volume returns the record's volume under the given measure
func (r NormalizedRecord) Volume(m Measure) float64 {
	if m == MeasureKilocharacters {
		return r.KilocharacterCount
	}
	return float64(r.DocumentCount)
}

// Measure selects which count drives rankings and period totals
type Measure string

const (
	MeasureDocuments      Measure = "documents"
	MeasureKilocharacters Measure = "kilocharacters"
)

// CrossReferenceEntry maps an external ID to a display name and region
type CrossReferenceEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// CrossReferenceIndex is keyed by external ID. A nil index is valid and empty.
type CrossReferenceIndex map[string]CrossReferenceEntry

// NewCrossReferenceIndex builds an index; later entries replace earlier ones
func NewCrossReferenceIndex(entries []CrossReferenceEntry) CrossReferenceIndex {
	idx := make(CrossReferenceIndex, len(entries))
	for _, e := range entries {
		idx[e.ID] = e
	}
	return idx
}

// Lookup returns the entry for id
func (x CrossReferenceIndex) Lookup(id string) (CrossReferenceEntry, bool) {
	if x == nil {
		return CrossReferenceEntry{}, false
	}
	e, ok := x[id]
	return e, ok
}

// Display returns the name for id, falling back to fallback and then to id itself
func (x CrossReferenceIndex) Display(id, fallback string) string {
	if e, ok := x.Lookup(id); ok && e.Name != "" {
		return e.Name
	}
	if fallback != "" {
		return fallback
	}
	return id
}

// PartnerReportEntry is one partner/method/period volume from a partner report
type PartnerReportEntry struct {
	Partner     string  `json:"partner"`
	Method      string  `json:"method"`
	MailboxType string  `json:"mailbox_type,omitempty"`
	Period      string  `json:"period"`
	Volume      float64 `json:"volume"`
	SourceFile  string  `json:"source_file"`
	Row         int     `json:"row"`
}

// MapConfigEntry is one translation map definition
type MapConfigEntry struct {
	Direction    string `json:"direction"`
	SenderID     string `json:"sender_id"`
	ReceiverID   string `json:"receiver_id"`
	DocumentType string `json:"document_type"`
	MapName      string `json:"map_name"`
	SourceFile   string `json:"source_file"`
	Row          int    `json:"row"`
}

// AuxiliaryData collects the optional reference datasets of a batch
type AuxiliaryData struct {
	CrossReference CrossReferenceIndex  `json:"cross_reference,omitempty"`
	PartnerReport  []PartnerReportEntry `json:"partner_report,omitempty"`
	MapConfig      []MapConfigEntry     `json:"map_config,omitempty"`
}
