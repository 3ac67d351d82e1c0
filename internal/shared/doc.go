// Package shared holds helpers used across packages that belong to no single
// pipeline stage.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and an excelize-backed workbook builder for extractor and
// transport fixtures:
//
//	logger, logs := testutil.NewTestLogger(t)
//	data := testutil.WorkbookBytes(t, testutil.Sheet{Name: "Date_Summary", Rows: rows})
package shared
