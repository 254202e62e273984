package features

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"agroforecast/internal/dataset"
)

// AggregateDaily collapses merged transaction records into one row per
// distinct date with global market statistics and the set of companies that
// sold that day. It also returns the top-N most frequent products, whose
// per-date transaction-count shares become feature columns.
func AggregateDaily(records []dataset.MergedRecord, cfg Config) ([]DailyRow, []string) {
	if len(records) == 0 {
		return nil, nil
	}

	topProducts := topProductsByCount(records, cfg.TopProducts)

	byDate := make(map[time.Time][]dataset.MergedRecord)
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([]DailyRow, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, aggregateDate(date, byDate[date], topProducts))
	}

	slog.Debug("aggregated daily rows",
		"records", len(records),
		"dates", len(rows),
		"top_products", topProducts,
	)

	return rows, topProducts
}

// aggregateDate builds the global aggregates for a single date
func aggregateDate(date time.Time, recs []dataset.MergedRecord, topProducts []string) DailyRow {
	row := emptyRow(date)
	row.TransactionCount = len(recs)

	products := make(map[string]int)
	states := make(map[string]struct{})
	routes := make(map[[2]string]struct{})

	var priceSum, amountSum, spreadSum float64
	spreadCount := 0

	for _, r := range recs {
		row.TotalVolume += r.Amount
		priceSum += r.Price
		amountSum += r.Amount
		products[r.Product]++
		if r.OriginState != "" {
			states[r.OriginState] = struct{}{}
		}
		routes[[2]string{r.OriginCity, r.DestinationCity}] = struct{}{}
		if r.HasQuote() {
			spreadSum += r.Price - r.Benchmark
			spreadCount++
		}
		if r.Amount > 0 && r.Company != "" {
			row.SoldSet[r.Company] = true
			row.VolumeByCompany[r.Company] += r.Amount
		}
	}

	row.MeanPrice = priceSum / float64(len(recs))
	row.MeanAmount = amountSum / float64(len(recs))
	row.DistinctProducts = len(products)
	row.DistinctOriginStates = len(states)
	row.DistinctRoutes = len(routes)
	if spreadCount > 0 {
		row.MeanSpread = spreadSum / float64(spreadCount)
	} else {
		row.MeanSpread = math.NaN()
	}

	for _, p := range topProducts {
		row.ProductShare[p] = float64(products[p]) / float64(len(recs))
	}

	return row
}

// topProductsByCount returns the n most frequent products across all
// records, ties broken alphabetically for determinism
func topProductsByCount(records []dataset.MergedRecord, n int) []string {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Product != "" {
			counts[r.Product]++
		}
	}

	products := make([]string, 0, len(counts))
	for p := range counts {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if counts[products[i]] != counts[products[j]] {
			return counts[products[i]] > counts[products[j]]
		}
		return products[i] < products[j]
	})

	if len(products) > n {
		products = products[:n]
	}
	return products
}
