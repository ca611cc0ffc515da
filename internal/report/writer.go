package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"ordersight/internal/errors"
	apiv1 "ordersight/pkg/contracts/api/v1"
	"ordersight/pkg/contracts/domain"
)

// Writer exports analysis reports to files.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a report writer. A nil logger falls back to the default.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		logger: logger.With(slog.String("component", "report_writer")),
	}
}

// WriteAll exports the report as CSV, JSON, and XLSX under dir. The three
// files are independent, so they are written concurrently.
func (w *Writer) WriteAll(ctx context.Context, dir string, result *domain.AnalysisResult, payload *apiv1.ReportPayload) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create report directory", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.WriteCSV(ctx, filepath.Join(dir, "analysis.csv"), payload)
	})
	g.Go(func() error {
		return w.WriteJSON(ctx, filepath.Join(dir, "analysis.json"), result)
	})
	g.Go(func() error {
		return w.WriteXLSX(ctx, filepath.Join(dir, "analysis.xlsx"), payload)
	})
	return g.Wait()
}

// WriteCSV writes the report tables to a single CSV file, one titled
// section per table.
func (w *Writer) WriteCSV(ctx context.Context, path string, payload *apiv1.ReportPayload) error {
	w.logger.InfoContext(ctx, "writing CSV report", slog.String("path", path))

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV report file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	for _, m := range payload.Metrics {
		if err := writer.Write([]string{m.Label, m.Value}); err != nil {
			return errors.NewStorageError("failed to write CSV metric row", err)
		}
	}

	for _, table := range []apiv1.Table{payload.CountryTable, payload.ProductTable, payload.PairTable} {
		if err := writer.Write([]string{}); err != nil {
			return errors.NewStorageError("failed to write CSV separator", err)
		}
		if err := writer.Write([]string{table.Title}); err != nil {
			return errors.NewStorageError("failed to write CSV section title", err)
		}
		if err := writer.Write(table.Columns); err != nil {
			return errors.NewStorageError("failed to write CSV header row", err)
		}
		for _, row := range table.Rows {
			if err := writer.Write(row); err != nil {
				return errors.NewStorageError("failed to write CSV data row", err)
			}
		}
	}

	return nil
}

// WriteJSON writes the full analysis result with metadata.
func (w *Writer) WriteJSON(ctx context.Context, path string, result *domain.AnalysisResult) error {
	w.logger.InfoContext(ctx, "writing JSON report", slog.String("path", path))

	jsonData := map[string]interface{}{
		"result":       result,
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "order_analysis_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON report file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonData); err != nil {
		return errors.NewStorageError("failed to encode analysis result to JSON", err)
	}

	return nil
}

// WriteXLSX writes the report as a workbook with one sheet per table plus
// a metrics sheet.
func (w *Writer) WriteXLSX(ctx context.Context, path string, payload *apiv1.ReportPayload) error {
	w.logger.InfoContext(ctx, "writing XLSX report", slog.String("path", path))

	f := excelize.NewFile()
	defer f.Close()

	const metricsSheet = "Metrics"
	if err := f.SetSheetName(f.GetSheetName(0), metricsSheet); err != nil {
		return errors.NewStorageError("failed to name metrics sheet", err)
	}
	for i, m := range payload.Metrics {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(metricsSheet, cell, &[]interface{}{m.Label, m.Value}); err != nil {
			return errors.NewStorageError("failed to write metrics row", err)
		}
	}

	sheets := []struct {
		name  string
		table apiv1.Table
	}{
		{name: "Countries", table: payload.CountryTable},
		{name: "Products", table: payload.ProductTable},
		{name: "Co-occurrences", table: payload.PairTable},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to create sheet %s", sheet.name), err)
		}

		header := make([]interface{}, len(sheet.table.Columns))
		for i, col := range sheet.table.Columns {
			header[i] = col
		}
		if err := f.SetSheetRow(sheet.name, "A1", &header); err != nil {
			return errors.NewStorageError("failed to write sheet header", err)
		}

		for i, row := range sheet.table.Rows {
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			cell := fmt.Sprintf("A%d", i+2)
			if err := f.SetSheetRow(sheet.name, cell, &values); err != nil {
				return errors.NewStorageError("failed to write sheet row", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save XLSX report", err)
	}
	return nil
}
