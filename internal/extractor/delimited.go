package extractor

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// readDelimited extracts the single table of a CSV-style file
func (e *Extractor) readDelimited(desc domain.FileDescriptor, r io.Reader) ([]domain.RawTable, error) {
	data, err := readAll(desc.Name, r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]domain.Cell
	var rowNumbers []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierrors.NewParsingError(desc.Name, "malformed delimited text", err)
		}
		line, _ := reader.FieldPos(0)

		cells := make([]domain.Cell, len(record))
		for i, v := range record {
			cells[i] = typeCell(v)
		}
		rows = append(rows, cells)
		rowNumbers = append(rowNumbers, line)
	}

	table, ok := buildTable(desc.Name, "", declaredKind(desc), rows, rowNumbers)
	if !ok {
		return nil, nil
	}
	return []domain.RawTable{table}, nil
}

// sniffDelimiter picks the candidate occurring most often, outside quotes, on the first line
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false
	for _, r := range strings.TrimRight(string(line), "\r") {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best := ','
	bestCount := 0
	for _, c := range delimiterCandidates {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best
}
