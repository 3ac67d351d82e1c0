// Package exporter serialises analysis reports.
//
// A report is flattened into Sections (overview, periods, rankings,
// seasonality, insights, warnings). ReportExporter writes them as one
// BOM-prefixed CSV file per section, as a workbook with one sheet per
// section, or as a single JSON document:
//
//	exp := exporter.NewReportExporter("reports", logger)
//	paths, err := exp.Export(report, exporter.FormatAll)
//
// CSVWriter is the lower-level CSV primitive.
package exporter
