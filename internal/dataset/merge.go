package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	apperrors "agroforecast/internal/errors"
)

// Merge left-joins transactions onto market quotes by
// (date, product, origin city, origin state). Every transaction produces
// exactly one merged record; transactions without a matching quote keep NaN
// benchmark fields. Duplicate quote keys are a precondition violation of the
// upstream data and are surfaced, not masked.
func Merge(transactions []Transaction, quotes []MarketQuote, usdRate float64) ([]MergedRecord, error) {
	if len(transactions) == 0 {
		return nil, apperrors.NewValidationError("no transactions to merge")
	}

	index := make(map[QuoteKey]MarketQuote, len(quotes))
	for _, q := range quotes {
		key := q.Key()
		if _, exists := index[key]; exists {
			return nil, apperrors.NewValidationError("duplicate market quote key").
				WithContext("date", key.Date.Format("2006-01-02")).
				WithContext("product", key.Product).
				WithContext("origin_city", key.OriginCity).
				WithContext("origin_state", key.OriginState)
		}
		q.Dollar = q.Benchmark * usdRate
		index[key] = q
	}

	merged := make([]MergedRecord, 0, len(transactions))
	matched := 0
	for _, t := range transactions {
		rec := MergedRecord{
			Transaction: t,
			MarketPrice: math.NaN(),
			Benchmark:   math.NaN(),
			Dollar:      math.NaN(),
		}

		key := QuoteKey{
			Date:        t.Date,
			Product:     t.Product,
			OriginCity:  t.OriginCity,
			OriginState: t.OriginState,
		}
		if q, ok := index[key]; ok {
			rec.MarketPrice = q.MarketPrice
			rec.Benchmark = q.Benchmark
			rec.Dollar = q.Dollar
			matched++
		}

		merged = append(merged, rec)
	}

	// Chronological order is assumed by every downstream stage
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	slog.Info("merged transactions with market quotes",
		"transactions", len(transactions),
		"quotes", len(quotes),
		"matched", matched,
		"match_rate", fmt.Sprintf("%.1f%%", 100*float64(matched)/float64(len(transactions))),
	)

	return merged, nil
}

// Companies returns the sorted, deduplicated set of seller companies in the
// records. This is the company universe: it is computed once per run and
// passed explicitly to every downstream stage.
func Companies(records []MergedRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Company != "" {
			seen[r.Company] = struct{}{}
		}
	}

	companies := make([]string, 0, len(seen))
	for c := range seen {
		companies = append(companies, c)
	}
	sort.Strings(companies)
	return companies
}
