package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "agroforecast/internal/errors"
)

func day(d int) time.Time {
	return time.Date(2024, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestMerge_LeftJoin(t *testing.T) {
	transactions := []Transaction{
		{Date: day(2), Company: "beta", Product: "corn", OriginCity: "cuiaba", OriginState: "MT", Price: 60, Amount: 500},
		{Date: day(1), Company: "alfa", Product: "soybean", OriginCity: "sorriso", OriginState: "MT", Price: 100, Amount: 1000},
		{Date: day(1), Company: "alfa", Product: "soybean", OriginCity: "nowhere", OriginState: "GO", Price: 90, Amount: 200},
	}
	quotes := []MarketQuote{
		{Date: day(1), Product: "soybean", OriginCity: "sorriso", OriginState: "MT", MarketPrice: 98, Benchmark: 10},
		{Date: day(2), Product: "corn", OriginCity: "cuiaba", OriginState: "MT", MarketPrice: 59, Benchmark: 4},
	}

	merged, err := Merge(transactions, quotes, 5.0)
	require.NoError(t, err)

	// Row count equals transaction count, sorted chronologically
	require.Len(t, merged, 3)
	assert.Equal(t, "alfa", merged[0].Company)
	assert.True(t, merged[2].Date.Equal(day(2)))

	// Matched row carries quote fields, converted dollar value included
	assert.Equal(t, 10.0, merged[0].Benchmark)
	assert.Equal(t, 50.0, merged[0].Dollar)
	assert.True(t, merged[0].HasQuote())

	// Unmatched row leaves benchmark fields NaN
	assert.True(t, math.IsNaN(merged[1].Benchmark))
	assert.False(t, merged[1].HasQuote())
}

func TestMerge_DuplicateQuoteKey(t *testing.T) {
	transactions := []Transaction{
		{Date: day(1), Company: "alfa", Product: "soybean", OriginCity: "sorriso", OriginState: "MT", Amount: 10},
	}
	quotes := []MarketQuote{
		{Date: day(1), Product: "soybean", OriginCity: "sorriso", OriginState: "MT", Benchmark: 10},
		{Date: day(1), Product: "soybean", OriginCity: "sorriso", OriginState: "MT", Benchmark: 11},
	}

	_, err := Merge(transactions, quotes, 5.0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestMerge_NoTransactions(t *testing.T) {
	_, err := Merge(nil, nil, 5.0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestCompanies(t *testing.T) {
	records := []MergedRecord{
		{Transaction: Transaction{Company: "gamma"}},
		{Transaction: Transaction{Company: "alfa"}},
		{Transaction: Transaction{Company: "gamma"}},
		{Transaction: Transaction{Company: ""}},
		{Transaction: Transaction{Company: "beta"}},
	}

	assert.Equal(t, []string{"alfa", "beta", "gamma"}, Companies(records))
	// Deterministic on re-invocation
	assert.Equal(t, Companies(records), Companies(records))
}
