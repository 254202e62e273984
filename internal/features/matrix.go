package features

import (
	"strings"
	"time"
)

// BuildMatrix flattens the daily table into a numeric feature matrix with a
// stable column order: global columns first, then one block per company in
// universe order. The returned names list is the contract between training
// and inference; a predictor reorders its row by it before calling the
// model. Dates are returned alongside for temporal splitting.
func BuildMatrix(rows []DailyRow, universe, topProducts []string) ([][]float64, []string, []time.Time) {
	names := featureNames(universe, topProducts)

	matrix := make([][]float64, len(rows))
	dates := make([]time.Time, len(rows))
	for i, row := range rows {
		matrix[i] = rowVector(row, universe, topProducts)
		dates[i] = row.Date
	}

	return matrix, names, dates
}

// featureNames returns the ordered feature-column names for the given
// company universe and top-product list
func featureNames(universe, topProducts []string) []string {
	names := []string{
		"total_volume",
		"mean_price",
		"distinct_products",
		"transaction_count",
		"weekday",
		"month",
		"quarter",
	}
	for _, p := range topProducts {
		names = append(names, "pct_product_"+slug(p))
	}
	names = append(names,
		"distinct_origin_states",
		"mean_spread",
		"distinct_routes",
		"mean_amount",
		"mean_company_mean_30d",
		"mean_company_std_30d",
		"mean_company_trend",
		"mean_company_days_since_sale",
	)
	for _, c := range universe {
		prefix := slug(c)
		names = append(names,
			prefix+"_sales_30d",
			prefix+"_mean_30d",
			prefix+"_std_30d",
			prefix+"_mean_7d",
			prefix+"_trend",
			prefix+"_days_since_last_sale",
			prefix+"_sold_yesterday",
			prefix+"_freq_7d",
			prefix+"_mean_sales_7d",
			prefix+"_dominant",
		)
	}
	return names
}

func rowVector(row DailyRow, universe, topProducts []string) []float64 {
	vec := []float64{
		row.TotalVolume,
		row.MeanPrice,
		float64(row.DistinctProducts),
		float64(row.TransactionCount),
		float64(row.Weekday),
		float64(row.Month),
		float64(row.Quarter),
	}
	for _, p := range topProducts {
		vec = append(vec, row.ProductShare[p])
	}
	vec = append(vec,
		float64(row.DistinctOriginStates),
		row.MeanSpread,
		float64(row.DistinctRoutes),
		row.MeanAmount,
		row.MeanCompanyMean30,
		row.MeanCompanyStd30,
		row.MeanCompanyTrend,
		row.MeanCompanyDaysSince,
	)
	for _, c := range universe {
		f := row.Companies[c]
		vec = append(vec,
			f.Volume30,
			f.Mean30,
			f.Std30,
			f.Mean7,
			f.Trend,
			f.DaysSinceSale,
			f.SoldYesterday,
			f.Freq7,
			f.RollMean7,
			f.Dominant,
		)
	}
	return vec
}

// slug normalizes an identifier for use in a feature-column name
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
	return s
}
