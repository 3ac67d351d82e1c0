package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"edipulse/internal/validation"
	"edipulse/pkg/contracts/domain"
)

// Format selects the export encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatAll  Format = "all"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX, FormatAll:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ReportExporter writes reports below an output directory
type ReportExporter struct {
	dir       string
	csv       *CSVWriter
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewReportExporter creates an exporter rooted at dir
func NewReportExporter(dir string, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &ReportExporter{
		dir:       dir,
		csv:       NewCSVWriter(dir, logger),
		validator: validation.NewFileValidator(logger, validation.SizePolicy{}),
		logger:    logger,
	}
}

// BaseName is the file name stem shared by every artifact of a report
func BaseName(r *domain.Report) string {
	name := safeName(r.Customer)
	t := r.Snapshot.Totals
	switch {
	case t.FirstPeriod != "" && t.FirstPeriod != t.LastPeriod:
		name += "_" + t.FirstPeriod + "-" + t.LastPeriod
	case t.LastPeriod != "":
		name += "_" + t.LastPeriod
	}
	return name
}

// Export writes the report in the given format and returns the written paths
func (e *ReportExporter) Export(r *domain.Report, format Format) ([]string, error) {
	if err := e.validator.ValidateOutputDirectory(e.dir); err != nil {
		return nil, err
	}

	var written []string
	if format == FormatJSON || format == FormatAll {
		path, err := e.writeFile(BaseName(r)+".json", func(w io.Writer) error { return WriteJSON(w, r) })
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if format == FormatCSV || format == FormatAll {
		paths, err := e.ExportCSV(r)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	if format == FormatXLSX || format == FormatAll {
		path, err := e.writeFile(BaseName(r)+".xlsx", func(w io.Writer) error { return WriteXLSX(w, r) })
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	e.logger.Info("Report exported",
		slog.String("customer", r.Customer),
		slog.String("format", string(format)),
		slog.Int("files", len(written)))
	return written, nil
}

// ExportCSV writes one BOM-prefixed CSV file per report section
func (e *ReportExporter) ExportCSV(r *domain.Report) ([]string, error) {
	base := BaseName(r)
	var written []string
	for _, sec := range Sections(r) {
		path, err := e.csv.WriteSimpleCSV(base+"_"+sec.Name+".csv", sec.Headers, sec.records())
		if err != nil {
			return written, fmt.Errorf("failed to write %s section: %w", sec.Name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func (e *ReportExporter) writeFile(name string, write func(io.Writer) error) (string, error) {
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJSON encodes the report as an indented JSON document
func WriteJSON(w io.Writer, r *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteXLSX writes the report as a workbook with one sheet per section
func WriteXLSX(w io.Writer, r *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, sec := range Sections(r) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sec.Title); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sec.Title); err != nil {
			return err
		}
		if err := writeSheet(f, sec, header); err != nil {
			return fmt.Errorf("sheet %s: %w", sec.Title, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sec Section, headerStyle int) error {
	headers := make([]any, len(sec.Headers))
	for i, h := range sec.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sec.Title, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(sec.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sec.Title, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range sec.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sec.Title, start, &cells); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(sec.Headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sec.Title, "A", lastCol, 16)
}

// cellValue maps section cells onto types excelize writes natively
func cellValue(v any) any {
	switch x := v.(type) {
	case ratio:
		return float64(x)
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case []string:
		return strings.Join(x, "; ")
	default:
		return v
	}
}
