package domain

// MetricsSnapshot is the derived read-only view over a timeline
type MetricsSnapshot struct {
	Measure        Measure               `json:"measure"`
	Totals         Totals                `json:"totals"`
	Periods        []PeriodMetrics       `json:"periods"`
	Dimensions     []DimensionMetrics    `json:"dimensions"`
	Seasonality    Seasonality           `json:"seasonality"`
	Reconciliation Reconciliation        `json:"reconciliation"`
	PartnerReport  *PartnerReportSummary `json:"partner_report,omitempty"`
	MapConfig      *MapConfigSummary     `json:"map_config,omitempty"`
}

// Dimension returns the metrics for kind, if computed
func (s MetricsSnapshot) Dimension(kind TableKind) (DimensionMetrics, bool) {
	for _, d := range s.Dimensions {
		if d.Kind == kind {
			return d, true
		}
	}
	return DimensionMetrics{}, false
}

// Totals aggregates the whole timeline
type Totals struct {
	Periods        int      `json:"periods"`
	FirstPeriod    string   `json:"first_period,omitempty"`
	LastPeriod     string   `json:"last_period,omitempty"`
	Documents      int64    `json:"documents"`
	Kilocharacters float64  `json:"kilocharacters"`
	Charge         float64  `json:"charge"`
	Volume         float64  `json:"volume"`
	Efficiency     *float64 `json:"efficiency"`
}

// PeriodMetrics is one point of the period series
type PeriodMetrics struct {
	Period              string    `json:"period"`
	SourceKind          TableKind `json:"source_kind"`
	Documents           int64     `json:"documents"`
	Kilocharacters      float64   `json:"kilocharacters"`
	Charge              float64   `json:"charge"`
	Volume              float64   `json:"volume"`
	Growth              *float64  `json:"growth"`
	DocumentGrowth      *float64  `json:"document_growth"`
	KilocharacterGrowth *float64  `json:"kilocharacter_growth"`
	Efficiency          *float64  `json:"efficiency"`
	Sources             []string  `json:"sources"`
}

// DimensionMetrics ranks the entities of one summary kind
type DimensionMetrics struct {
	Kind          TableKind      `json:"kind"`
	Total         float64        `json:"total"`
	Entities      []RankedEntity `json:"entities"`
	Concentration Concentration  `json:"concentration"`
}

// RankedEntity is one entity's position and totals within a dimension
type RankedEntity struct {
	Rank           int            `json:"rank"`
	EntityID       string         `json:"entity_id"`
	DisplayName    string         `json:"display_name"`
	Region         string         `json:"region,omitempty"`
	Documents      int64          `json:"documents"`
	Kilocharacters float64        `json:"kilocharacters"`
	Charge         float64        `json:"charge"`
	Volume         float64        `json:"volume"`
	Share          float64        `json:"share"`
	Efficiency     *float64       `json:"efficiency"`
	LatestGrowth   *float64       `json:"latest_growth"`
	Periods        []EntityPeriod `json:"periods"`
}

// EntityPeriod is one entity's counts in one period
type EntityPeriod struct {
	Period         string   `json:"period"`
	Documents      int64    `json:"documents"`
	Kilocharacters float64  `json:"kilocharacters"`
	Volume         float64  `json:"volume"`
	Efficiency     *float64 `json:"efficiency"`
}

// Concentration describes how much volume the leading entities hold
type Concentration struct {
	TopN        int     `json:"top_n"`
	TopShare    float64 `json:"top_share"`
	HHI         float64 `json:"hhi"`
	Leader      string  `json:"leader,omitempty"`
	LeaderShare float64 `json:"leader_share"`
}

// SeasonalityStatus tells whether seasonality verdicts were computed
type SeasonalityStatus string

const (
	SeasonalityOK               SeasonalityStatus = "ok"
	SeasonalityInsufficientData SeasonalityStatus = "insufficient_data"
)

// Seasonality holds month-of-year statistics. Months is empty unless Status is ok.
type Seasonality struct {
	Status        SeasonalityStatus `json:"status"`
	Years         int               `json:"years"`
	OverallMean   float64           `json:"overall_mean"`
	OverallStdDev float64           `json:"overall_std_dev"`
	Months        []MonthSeason     `json:"months,omitempty"`
}

// Peaks returns the months flagged as seasonal peaks
func (s Seasonality) Peaks() []MonthSeason {
	var out []MonthSeason
	for _, m := range s.Months {
		if m.Peak {
			out = append(out, m)
		}
	}
	return out
}

// MonthSeason is the statistics of one calendar month across years
type MonthSeason struct {
	Month   int     `json:"month"`
	Name    string  `json:"name"`
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Peak    bool    `json:"peak"`
}

// Reconciliation lists entity IDs the cross-reference could not resolve
type Reconciliation struct {
	CrossReferenceLoaded bool           `json:"cross_reference_loaded"`
	Unresolved           []UnresolvedID `json:"unresolved,omitempty"`
}

// UnresolvedID is an entity with traffic but no cross-reference entry
type UnresolvedID struct {
	Kind     TableKind `json:"kind"`
	EntityID string    `json:"entity_id"`
}

// NamedVolume is a label and its summed volume
type NamedVolume struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

// NamedCount is a label and a count
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PartnerReportSummary aggregates the optional partner report
type PartnerReportSummary struct {
	Total               float64       `json:"total"`
	ByMethod            []NamedVolume `json:"by_method"`
	ByMailboxType       []NamedVolume `json:"by_mailbox_type,omitempty"`
	ByPartner           []NamedVolume `json:"by_partner"`
	MissingFromActivity []string      `json:"missing_from_activity,omitempty"`
	MissingFromReport   []string      `json:"missing_from_report,omitempty"`
}

// MapConfigSummary aggregates the optional map configuration
type MapConfigSummary struct {
	Maps             int          `json:"maps"`
	ByDirection      []NamedCount `json:"by_direction"`
	ByDocumentType   []NamedCount `json:"by_document_type"`
	UnmappedPartners []string     `json:"unmapped_partners,omitempty"`
}
