package dataset

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "agroforecast/internal/errors"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestLoadTransactions(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Date", "Time", "Company", "Seller ID", "Buyer ID", "Price", "Amount", "Product", "Origin_City", "Origin_State", "Destination_City", "Destination_State"},
		{"2024-10-01", "09:30", "alfa", "S1", "B9", "101.5", "1200", "soybean", "sorriso", "MT", "santos", "SP"},
		{"2024-10-02", "14:10", "beta", "S2", "B3", "60.25", "800", "corn", "cuiaba", "MT", "paranagua", "PR"},
	})

	transactions, err := LoadTransactions(path)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	first := transactions[0]
	assert.True(t, first.Date.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "alfa", first.Company)
	assert.Equal(t, 101.5, first.Price)
	assert.Equal(t, 1200.0, first.Amount)
	assert.Equal(t, "soybean", first.Product)
	assert.Equal(t, "santos", first.DestinationCity)
	assert.True(t, first.IsValid())
}

func TestLoadTransactions_MalformedNumericCell(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Date", "Company", "Price", "Amount"},
		{"2024-10-01", "alfa", "n/a", "1,200"},
	})

	transactions, err := LoadTransactions(path)
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	// Unparseable numerics coerce to 0; separators are stripped
	assert.Equal(t, 0.0, transactions[0].Price)
	assert.Equal(t, 1200.0, transactions[0].Amount)
}

func TestLoadTransactions_InvalidDate(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Date", "Company", "Price", "Amount"},
		{"not-a-date", "alfa", "100", "10"},
	})

	_, err := LoadTransactions(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestLoadTransactions_MissingHeader(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Date", "Something", "Else"},
		{"2024-10-01", "x", "y"},
	})

	_, err := LoadTransactions(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestLoadMarket(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Date", "Product", "Origin_City", "Origin_State", "Price", "CBOT"},
		{"2024-10-01", "soybean", "sorriso", "MT", "98.4", "10.2"},
	})

	quotes, err := LoadMarket(path)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "soybean", quotes[0].Product)
	assert.Equal(t, 10.2, quotes[0].Benchmark)
	assert.Equal(t, 98.4, quotes[0].MarketPrice)
}

func TestParseDateCell(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"iso date", "2024-11-04", time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC), false},
		{"slash date", "01/02/2006", time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"datetime truncated to midnight", "2024-11-04 15:04:05", time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC), false},
		{"empty cell", "", time.Time{}, true},
		{"garbage", "tomorrow", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDateCell(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}
