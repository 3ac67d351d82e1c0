package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	apierrors "edipulse/internal/errors"
	"edipulse/internal/validation"
	"edipulse/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// Extractor turns one physical file into zero or more raw tables.
// It is the only pipeline stage that reads file bytes.
type Extractor struct {
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewExtractor creates an extractor enforcing the given size policy
func NewExtractor(logger *slog.Logger, policy validation.SizePolicy) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:    logger.With(slog.String("component", "extractor")),
		validator: validation.NewFileValidator(logger, policy),
	}
}

// Extract reads a classified file. Every failure is a parse error local to the file.
func (e *Extractor) Extract(ctx context.Context, file domain.ClassifiedFile) ([]domain.RawTable, error) {
	desc := file.Descriptor
	if err := e.validator.ValidateSize(desc); err != nil {
		return nil, err
	}
	if file.Upload.Open == nil {
		return nil, apierrors.NewParsingError(desc.Name, "upload has no content", nil)
	}

	rc, err := file.Upload.Open()
	if err != nil {
		return nil, apierrors.NewParsingError(desc.Name, "failed to open file", err)
	}
	defer rc.Close()

	var tables []domain.RawTable
	if desc.IsSpreadsheet() {
		tables, err = e.readWorkbook(ctx, desc, rc)
	} else {
		tables, err = e.readDelimited(desc, rc)
	}
	if err != nil {
		return nil, err
	}

	e.logger.DebugContext(ctx, "Extracted tables",
		slog.String("file", desc.Name),
		slog.Int("tables", len(tables)))
	return tables, nil
}

// declaredKind returns the kind an auxiliary file carries or a CSV is inferred to carry
func declaredKind(desc domain.FileDescriptor) domain.TableKind {
	if kind, ok := domain.KindForRole(desc.Role); ok {
		return kind
	}
	return KindForDelimited(desc.DetectedType)
}

// buildTable applies header detection and row filtering to already-typed rows.
// rowNumbers holds the 1-based source row of each entry in rows.
func buildTable(source, sheet string, kind domain.TableKind, rows [][]domain.Cell, rowNumbers []int) (domain.RawTable, bool) {
	table := domain.RawTable{
		SourceFile: source,
		SheetName:  sheet,
		Kind:       kind,
	}

	headerIdx := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return table, false
	}

	header := make([]string, len(rows[headerIdx]))
	for i, c := range rows[headerIdx] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(c.Text, utf8BOM))
	}
	table.Header = header

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) || isTotalRow(row) {
			continue
		}
		if len(table.Rows) == 0 {
			table.FirstRow = rowNumbers[i]
		}
		table.Rows = append(table.Rows, row)
		table.RowNumbers = append(table.RowNumbers, rowNumbers[i])
	}
	return table, true
}

// typeCell types a raw text value: empty is null, finite numeric text is a
// number. NaN and Inf spellings stay strings.
func typeCell(text string) domain.Cell {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.Cell{Kind: domain.CellNull, Text: text}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return domain.Cell{Kind: domain.CellNumber, Text: text, Number: n}
	}
	return domain.Cell{Kind: domain.CellString, Text: text}
}

func readAll(name string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apierrors.NewParsingError(name, "failed to read file", err)
	}
	return data, nil
}

func sheetError(desc domain.FileDescriptor, sheet string, err error) error {
	return apierrors.NewParsingError(desc.Name, fmt.Sprintf("failed to read sheet %q", sheet), err).InSheet(sheet)
}
