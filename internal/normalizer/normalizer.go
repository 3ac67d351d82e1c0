package normalizer

import (
	"fmt"
	"log/slog"
	"math"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

// Result is the output of normalizing one table. Output order follows row order.
type Result struct {
	Records  []domain.NormalizedRecord
	Warnings []domain.Warning
}

// Normalizer converts raw tables into canonical records
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger.With(slog.String("component", "normalizer"))}
}

// summaryFields lists the fields each summary kind resolves, identity first
var summaryFields = map[domain.TableKind][]Field{
	domain.KindDateSummary:  {FieldDate, FieldPeriod, FieldDocuments, FieldKilocharacters, FieldCharge, FieldDirection},
	domain.KindDocSummary:   {FieldDocumentType, FieldPeriod, FieldDate, FieldName, FieldDirection, FieldDocuments, FieldKilocharacters, FieldCharge},
	domain.KindHubSummary:   {FieldHub, FieldPeriod, FieldDate, FieldName, FieldDirection, FieldDocuments, FieldKilocharacters, FieldCharge},
	domain.KindTPSummary:    {FieldPartner, FieldPeriod, FieldDate, FieldName, FieldDirection, FieldDocuments, FieldKilocharacters, FieldCharge},
	domain.KindTPDocSummary: {FieldPartner, FieldDocumentType, FieldPeriod, FieldDate, FieldName, FieldDirection, FieldDocuments, FieldKilocharacters, FieldCharge},
}

// Normalize converts a primary summary table. filePeriod is the period
// detected from the file name, used when the table carries no date column.
func (n *Normalizer) Normalize(table domain.RawTable, filePeriod string) Result {
	fields, ok := summaryFields[table.Kind]
	if !ok {
		return Result{Warnings: []domain.Warning{
			tableWarning(table, fmt.Sprintf("table kind %q is not a summary", table.Kind)),
		}}
	}
	cols := resolveColumns(table.Header, fields...)

	if table.Kind == domain.KindDateSummary && !cols.has(FieldDate) {
		return Result{Warnings: []domain.Warning{
			tableWarning(table, "date summary has no date column"),
		}}
	}

	var res Result
	for i, row := range table.Rows {
		rec, warnings, ok := n.normalizeRow(table, cols, row, table.SourceRow(i), filePeriod)
		res.Warnings = append(res.Warnings, warnings...)
		if ok {
			res.Records = append(res.Records, rec)
		}
	}

	n.logger.Debug("Normalized table",
		slog.String("file", table.SourceFile),
		slog.String("sheet", table.SheetName),
		slog.String("kind", string(table.Kind)),
		slog.Int("records", len(res.Records)),
		slog.Int("warnings", len(res.Warnings)))
	return res
}

func (n *Normalizer) normalizeRow(table domain.RawTable, cols columns, row []domain.Cell, rowNum int, filePeriod string) (domain.NormalizedRecord, []domain.Warning, bool) {
	var warnings []domain.Warning
	warn := func(column, msg string) {
		warnings = append(warnings, rowWarning(table, rowNum, column, msg))
	}

	rec := domain.NormalizedRecord{
		Kind:         table.Kind,
		Name:         text(row, cols, FieldName),
		Partner:      text(row, cols, FieldPartner),
		DocumentType: text(row, cols, FieldDocumentType),
		Direction:    normalizeDirection(text(row, cols, FieldDirection)),
		SourceFile:   table.SourceFile,
		Row:          rowNum,
	}

	// Period comes from the date column, then a period column, then the file name
	switch {
	case cols.has(FieldDate):
		t, err := parseDate(cell(row, cols[FieldDate]))
		if err != nil {
			warn(headerAt(table, cols[FieldDate]), "record dropped: "+err.Error())
			return rec, warnings, false
		}
		rec.Date = t.Format("2006-01-02")
		rec.Period = t.Format("200601")
	case cols.has(FieldPeriod):
		p, err := parsePeriod(cell(row, cols[FieldPeriod]))
		if err != nil {
			warn(headerAt(table, cols[FieldPeriod]), "record dropped: "+err.Error())
			return rec, warnings, false
		}
		rec.Period = p
	default:
		rec.Period = filePeriod
	}
	if !domain.IsValidPeriod(rec.Period) {
		warn("", fmt.Sprintf("record dropped: no valid period (got %q)", rec.Period))
		return rec, warnings, false
	}

	switch table.Kind {
	case domain.KindDateSummary:
		rec.EntityID = rec.Date
	case domain.KindDocSummary:
		rec.EntityID = rec.DocumentType
	case domain.KindHubSummary:
		rec.EntityID = text(row, cols, FieldHub)
	case domain.KindTPSummary:
		rec.EntityID = rec.Partner
	case domain.KindTPDocSummary:
		if rec.Partner != "" && rec.DocumentType != "" {
			rec.EntityID = rec.Partner + "|" + rec.DocumentType
		}
	}
	if rec.EntityID == "" {
		warn("", "record dropped: entity identifier is empty")
		return rec, warnings, false
	}

	docs := n.count(row, cols, FieldDocuments, table, rowNum, &warnings)
	rec.DocumentCount = int64(math.Round(docs))
	rec.KilocharacterCount = n.count(row, cols, FieldKilocharacters, table, rowNum, &warnings)
	if idx, ok := cols[FieldCharge]; ok {
		v, err := parseNumber(cell(row, idx))
		if err != nil {
			warnings = append(warnings, rowWarning(table, rowNum, headerAt(table, idx), err.Error()+", using 0"))
		}
		rec.Charge = v
	}

	for _, w := range warnings {
		rec.Warnings = append(rec.Warnings, w.Message)
	}
	return rec, warnings, true
}

// count coerces a non-negative count column; failures degrade to zero with a warning
func (n *Normalizer) count(row []domain.Cell, cols columns, f Field, table domain.RawTable, rowNum int, warnings *[]domain.Warning) float64 {
	idx, ok := cols[f]
	if !ok {
		return 0
	}
	v, err := parseNumber(cell(row, idx))
	if err != nil {
		*warnings = append(*warnings, rowWarning(table, rowNum, headerAt(table, idx), err.Error()+", using 0"))
		return 0
	}
	if v < 0 {
		*warnings = append(*warnings, rowWarning(table, rowNum, headerAt(table, idx),
			fmt.Sprintf("negative count %v clamped to 0", v)))
		return 0
	}
	if v >= math.MaxInt64 {
		*warnings = append(*warnings, rowWarning(table, rowNum, headerAt(table, idx),
			fmt.Sprintf("count %v out of range, using 0", v)))
		return 0
	}
	return v
}

func headerAt(table domain.RawTable, idx int) string {
	if idx >= 0 && idx < len(table.Header) {
		return table.Header[idx]
	}
	return ""
}

func rowWarning(table domain.RawTable, row int, column, msg string) domain.Warning {
	return apierrors.NewAppValidationError(table.SourceFile, msg).
		InSheet(table.SheetName).
		At(row, column).
		AsWarning()
}

func tableWarning(table domain.RawTable, msg string) domain.Warning {
	return apierrors.NewAppValidationError(table.SourceFile, msg).
		InSheet(table.SheetName).
		AsWarning()
}
