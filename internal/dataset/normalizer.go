// Package dataset turns raw uploaded order tables into validated canonical
// tables. It owns the schema check and the coercion policies; everything
// downstream assumes its invariants (resolvable dates, non-negative
// quantities, opaque product references).
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ordersight/internal/errors"
	"ordersight/pkg/contracts/domain"
)

// Required source columns, case-sensitive, in reporting order.
var requiredColumns = []string{"ID", "orderdate", "quantity", "shipcountrycode", "ref_total", "Vip"}

// dateLayouts are the accepted order-date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
}

// Result is the outcome of one normalization run. DroppedRows counts rows
// excluded for unparsable order dates; that is a data-quality policy, not
// an error, but the count stays inspectable.
type Result struct {
	Table       *domain.CanonicalTable
	DroppedRows int
}

// Normalizer validates and coerces raw order rows into canonical tables.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to the default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// NormalizeCSV reads a delimited-text dataset and normalizes it. The first
// row must be the header carrying the required column names.
func (n *Normalizer) NormalizeCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV header", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("failed to read CSV row", err)
		}
		rows = append(rows, row)
	}

	return n.normalize(ctx, header, rows)
}

// NormalizeXLSX reads a spreadsheet dataset and normalizes its first sheet.
func (n *Normalizer) NormalizeXLSX(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("spreadsheet has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError("spreadsheet sheet is empty", nil)
	}

	return n.normalize(ctx, rows[0], rows[1:])
}

// normalize applies the schema check and the coercion rules to raw rows.
func (n *Normalizer) normalize(ctx context.Context, header []string, rows [][]string) (*Result, error) {
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	records := make([]domain.OrderRecord, 0, len(rows))
	dropped := 0

	for i, row := range rows {
		if isBlank(row) {
			continue
		}

		date, ok := parseOrderDate(cell(row, columns["orderdate"]))
		if !ok {
			// Unparsable dates exclude the row. Silent by policy; the
			// count is reported on the result.
			dropped++
			n.logger.DebugContext(ctx, "dropped row with unparsable order date",
				slog.Int("row", i+1),
				slog.String("orderdate", cell(row, columns["orderdate"])))
			continue
		}

		records = append(records, domain.OrderRecord{
			OrderID:     strings.TrimSpace(cell(row, columns["ID"])),
			OrderDate:   date,
			Quantity:    parseQuantity(cell(row, columns["quantity"])),
			ShipCountry: strings.TrimSpace(cell(row, columns["shipcountrycode"])),
			// Product references stay opaque strings so differently
			// formatted numeric refs never compare equal as numbers.
			ProductRef: strings.TrimSpace(cell(row, columns["ref_total"])),
			VipFlag:    parseVipFlag(cell(row, columns["Vip"])),
		})
	}

	if dropped > 0 {
		n.logger.WarnContext(ctx, "rows dropped during normalization",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(records)))
	}

	n.logger.InfoContext(ctx, "dataset normalized",
		slog.Int("rows", len(records)),
		slog.Int("dropped", dropped))

	return &Result{
		Table:       domain.NewCanonicalTable(records),
		DroppedRows: dropped,
	}, nil
}

// mapColumns resolves required column positions from the header.
// Column names match case-sensitively.
func mapColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	columns := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, name := range requiredColumns {
		idx, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns[name] = idx
	}

	if len(missing) > 0 {
		return nil, errors.NewSchemaError(missing)
	}
	return columns, nil
}

// cell returns the trimmed value at idx, empty when the row is short.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseOrderDate tries the accepted layouts in order.
func parseOrderDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseQuantity coerces a quantity cell to a non-negative integer.
// Unparsable or missing values coerce to 0 rather than dropping the row.
func parseQuantity(value string) int {
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return 0
	}
	if q, err := strconv.Atoi(value); err == nil {
		if q < 0 {
			return 0
		}
		return q
	}
	// Values like "3.0" arrive from spreadsheet exports.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	return 0
}

// parseVipFlag keeps the raw integer flag. Anything unparsable becomes -1,
// which matches neither the VIP nor the non-VIP filter.
func parseVipFlag(value string) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return -1
}
