package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "agroforecast/internal/errors"
)

// dateLayouts lists the date formats accepted at the loading boundary.
// Anything else fails fast rather than being silently coerced.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"02/01/2006 15:04:05",
}

// LoadTransactions reads the transactions workbook and extracts trade rows
func LoadTransactions(filePath string) ([]Transaction, error) {
	rows, err := readSheet(filePath)
	if err != nil {
		return nil, err
	}

	headerRow, columns, err := mapColumns(rows, []string{"date", "company", "amount", "price"})
	if err != nil {
		return nil, apperrors.NewParsingError("transactions header not found", err).
			WithContext("file", filePath)
	}

	var transactions []Transaction
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row, columns) {
			continue
		}

		date, err := parseDateCell(cell(row, columns, "date"))
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("invalid date on row %d", i+1), err).
				WithContext("file", filePath)
		}

		transactions = append(transactions, Transaction{
			Date:             date,
			Time:             cell(row, columns, "time"),
			Company:          cell(row, columns, "company"),
			SellerID:         cell(row, columns, "seller id"),
			BuyerID:          cell(row, columns, "buyer id"),
			Price:            parseFloatCell(row, columns, "price"),
			Amount:           parseFloatCell(row, columns, "amount"),
			Product:          cell(row, columns, "product"),
			OriginCity:       cell(row, columns, "origin_city"),
			OriginState:      cell(row, columns, "origin_state"),
			DestinationCity:  cell(row, columns, "destination_city"),
			DestinationState: cell(row, columns, "destination_state"),
		})
	}

	if len(transactions) == 0 {
		return nil, apperrors.NewParsingError("no transaction rows found", nil).
			WithContext("file", filePath)
	}

	slog.Info("loaded transactions", "file", filePath, "rows", len(transactions))
	return transactions, nil
}

// LoadMarket reads the market workbook and extracts reference-price rows
func LoadMarket(filePath string) ([]MarketQuote, error) {
	rows, err := readSheet(filePath)
	if err != nil {
		return nil, err
	}

	headerRow, columns, err := mapColumns(rows, []string{"date", "product", "cbot"})
	if err != nil {
		return nil, apperrors.NewParsingError("market header not found", err).
			WithContext("file", filePath)
	}

	var quotes []MarketQuote
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row, columns) {
			continue
		}

		date, err := parseDateCell(cell(row, columns, "date"))
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("invalid date on row %d", i+1), err).
				WithContext("file", filePath)
		}

		quotes = append(quotes, MarketQuote{
			Date:        date,
			Product:     cell(row, columns, "product"),
			OriginCity:  cell(row, columns, "origin_city"),
			OriginState: cell(row, columns, "origin_state"),
			MarketPrice: parseFloatCell(row, columns, "price"),
			Benchmark:   parseFloatCell(row, columns, "cbot"),
		})
	}

	slog.Info("loaded market quotes", "file", filePath, "rows", len(quotes))
	return quotes, nil
}

// readSheet opens a workbook and returns the rows of the first sheet that
// contains a recognizable header
func readSheet(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		for _, row := range rows[:min(4, len(rows))] {
			rowText := strings.ToLower(strings.Join(row, " "))
			if strings.Contains(rowText, "date") {
				slog.Debug("found data sheet", "file", filePath, "sheet", name, "rows", len(rows))
				return rows, nil
			}
		}
	}

	return nil, apperrors.NewParsingError("could not find data sheet in workbook", nil).
		WithContext("file", filePath)
}

// mapColumns locates the header row and builds a lowercase column-name map.
// The header must contain every name in required.
func mapColumns(rows [][]string, required []string) (int, map[string]int, error) {
	for i := 0; i < min(5, len(rows)); i++ {
		columns := make(map[string]int)
		for j, h := range rows[i] {
			name := strings.ToLower(strings.TrimSpace(h))
			if name != "" {
				columns[name] = j
			}
		}

		found := true
		for _, name := range required {
			if _, ok := columns[name]; !ok {
				found = false
				break
			}
		}
		if found {
			return i, columns, nil
		}
	}
	return 0, nil, fmt.Errorf("no header row with columns %v in first rows", required)
}

func cell(row []string, columns map[string]int, name string) string {
	if idx, ok := columns[name]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseFloatCell coerces a numeric cell, stripping thousands separators.
// Malformed values become 0 rather than failing the load, but are logged.
func parseFloatCell(row []string, columns map[string]int, name string) float64 {
	raw := strings.ReplaceAll(cell(row, columns, name), ",", "")
	if raw == "" {
		return 0
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Debug("coercing unparseable numeric cell to 0", "column", name, "value", raw)
		return 0
	}
	return val
}

// parseDateCell parses a date cell, normalizing to UTC midnight
func parseDateCell(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	// Excel serial date fallback
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func isEmptyRow(row []string, columns map[string]int) bool {
	for _, idx := range columns {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			return false
		}
	}
	return true
}
