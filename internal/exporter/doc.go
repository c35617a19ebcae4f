// Package exporter provides the output writers for the vendor performance
// reports.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// append mode, and UTF-8 BOM for Excel compatibility. Relative filenames
// resolve into the configured output directory.
//
// WorkbookWriter: Optional Excel workbook output collecting every report
// grid into one file, one sheet per report, for the downstream Vendor
// Performance grid spreadsheet.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//	err := writer.WriteSimpleCSV("alf_census.csv", headers, records)
//
//	wb := exporter.NewWorkbookWriter(paths)
//	err = wb.WriteWorkbook("vendor_performance.xlsx", grids)
package exporter
