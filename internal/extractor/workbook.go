package extractor

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

// Built-in number format ids that render as dates or times
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// readWorkbook extracts every recognized sheet of a workbook. Auxiliary
// workbooks contribute their first sheet as the declared kind.
func (e *Extractor) readWorkbook(ctx context.Context, desc domain.FileDescriptor, r io.Reader) ([]domain.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError(desc.Name, "unsupported or corrupt workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.NewParsingError(desc.Name, "workbook has no sheets", nil)
	}

	auxKind, auxiliary := domain.KindForRole(desc.Role)
	styles := newDateStyleCache(f)

	var tables []domain.RawTable
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var kind domain.TableKind
		if auxiliary {
			if i > 0 {
				break
			}
			kind = auxKind
		} else {
			k, ok := KindForSheet(sheet)
			if !ok {
				e.logger.DebugContext(ctx, "Skipping unrecognized sheet",
					slog.String("file", desc.Name),
					slog.String("sheet", sheet))
				continue
			}
			kind = k
		}

		raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, sheetError(desc, sheet, err)
		}

		rows := make([][]domain.Cell, len(raw))
		rowNumbers := make([]int, len(raw))
		for r, values := range raw {
			rowNumbers[r] = r + 1
			rows[r] = make([]domain.Cell, len(values))
			for c, v := range values {
				cell := typeCell(v)
				if cell.Kind == domain.CellNumber && styles.isDate(sheet, c+1, r+1) {
					cell.Kind = domain.CellDate
				}
				rows[r][c] = cell
			}
		}

		table, ok := buildTable(desc.Name, sheet, kind, rows, rowNumbers)
		if !ok {
			e.logger.DebugContext(ctx, "Skipping empty sheet",
				slog.String("file", desc.Name),
				slog.String("sheet", sheet))
			continue
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// dateStyleCache memoizes whether a style index formats numbers as dates
type dateStyleCache struct {
	f     *excelize.File
	known map[int]bool
}

func newDateStyleCache(f *excelize.File) *dateStyleCache {
	return &dateStyleCache{f: f, known: make(map[int]bool)}
}

func (c *dateStyleCache) isDate(sheet string, col, row int) bool {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	idx, err := c.f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := c.known[idx]; ok {
		return v
	}

	style, err := c.f.GetStyle(idx)
	isDate := err == nil && style != nil && (builtinDateFormats[style.NumFmt] || isDatePattern(style.CustomNumFmt))
	c.known[idx] = isDate
	return isDate
}

// isDatePattern recognizes custom formats such as yyyy-mm-dd or mmm-yy
func isDatePattern(format *string) bool {
	if format == nil {
		return false
	}
	f := strings.ToLower(*format)
	if strings.Contains(f, "0") || strings.Contains(f, "#") {
		return false
	}
	return strings.Contains(f, "yy") || strings.Contains(f, "dd") || strings.Contains(f, "mmm")
}
