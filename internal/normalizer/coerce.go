package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"edipulse/pkg/contracts/domain"
)

var numberCleaner = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "¥", "", " ", "", "\u00a0", "")

// parseNumber coerces a cell to a float. Empty cells are zero without error.
func parseNumber(c domain.Cell) (float64, error) {
	if c.Kind == domain.CellNumber || c.Kind == domain.CellDate {
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return 0, fmt.Errorf("%q is not a finite number", c.Text)
		}
		return c.Number, nil
	}
	s := strings.TrimSpace(c.Text)
	if s == "" || s == "-" {
		return 0, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSuffix(numberCleaner.Replace(s), "%")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", c.Text)
	}
	if negative {
		v = -v
	}
	return v, nil
}

var (
	digitsPattern = regexp.MustCompile(`^\d+$`)
	textLayouts   = []string{
		"01/02/2006",
		"1/2/2006",
		"2006-01-02",
		"2006/01/02",
		"2006-01",
		"Jan 2006",
		"January 2006",
		"Jan-06",
		"Jan-2006",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
)

// Excel serials between 1900-01-01 and 9999-12-31
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// parseDate coerces a cell to a calendar date
func parseDate(c domain.Cell) (time.Time, error) {
	s := strings.TrimSpace(c.Text)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}

	if digitsPattern.MatchString(s) {
		switch len(s) {
		case 8:
			if t, err := time.Parse("20060102", s); err == nil {
				return t, nil
			}
		case 6:
			if t, err := time.Parse("200601", s); err == nil {
				return t, nil
			}
		}
	}

	if c.Kind == domain.CellNumber || c.Kind == domain.CellDate {
		if c.Number >= minExcelSerial && c.Number <= maxExcelSerial {
			t, err := excelize.ExcelDateToTime(c.Number, false)
			if err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%q is not a date", c.Text)
	}

	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognized date", c.Text)
}

// parsePeriod coerces a cell to a YYYYMM period
func parsePeriod(c domain.Cell) (string, error) {
	t, err := parseDate(c)
	if err != nil {
		return "", err
	}
	period := t.Format("200601")
	if !domain.IsValidPeriod(period) {
		return "", fmt.Errorf("%q is outside the supported range", c.Text)
	}
	return period, nil
}

var headerPeriodLayouts = []string{"200601", "2006-01", "2006/01", "Jan 2006", "January 2006", "Jan-06", "Jan-2006", "01/2006"}

// headerPeriod recognizes a column header that names a billing period
func headerPeriod(h string) (string, bool) {
	s := strings.TrimSpace(h)
	for _, layout := range headerPeriodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			period := t.Format("200601")
			return period, domain.IsValidPeriod(period)
		}
	}
	return "", false
}

// normalizeDirection folds the common spellings of flow direction
func normalizeDirection(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "in", "inbound", "i", "receive", "received":
		return "inbound"
	case "out", "outbound", "o", "send", "sent":
		return "outbound"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

func text(row []domain.Cell, cols columns, f Field) string {
	idx, ok := cols[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx].Text)
}

func cell(row []domain.Cell, idx int) domain.Cell {
	if idx < 0 || idx >= len(row) {
		return domain.Cell{Kind: domain.CellNull}
	}
	return row[idx]
}
