package features

import (
	"log/slog"
	"math"
)

// BuildCompanyFeatures computes trailing statistics for every company in the
// universe and merges them onto the daily table. The universe is fixed once
// per run and passed in explicitly; each company's series is computed
// independently by a pure pass over the calendar, so no state is shared
// between companies.
//
// An empty universe is a valid degenerate case: the table keeps its global
// features and every row carries an empty company map.
func BuildCompanyFeatures(rows []DailyRow, universe []string, cfg Config) []DailyRow {
	out := make([]DailyRow, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Companies = make(map[string]CompanyFeatures, len(universe))
	}

	for _, company := range universe {
		series := companySeries(out, company, cfg)
		for i := range out {
			out[i].Companies[company] = series[i]
		}
	}

	attachCompanyMeans(out)

	slog.Debug("built per-company features",
		"companies", len(universe),
		"dates", len(rows),
	)

	return out
}

// companySeries computes one company's feature series over the calendar.
// Observation-window statistics (long/short trailing sum, mean, std, trend)
// update only on the company's sale days and carry forward between them;
// calendar-window statistics (recency, 7-day frequency and rolling mean)
// advance on every date. Only information up to and including each date is
// used.
func companySeries(rows []DailyRow, company string, cfg Config) []CompanyFeatures {
	out := make([]CompanyFeatures, len(rows))

	var observations []float64 // sale-day volumes, chronological
	var carry CompanyFeatures  // last computed observation-window stats
	daysSince := -1.0
	prevSold := false

	for i, row := range rows {
		volume := row.VolumeByCompany[company]
		sold := row.Sold(company)

		if sold {
			observations = append(observations, volume)
			longTail := tail(observations, cfg.LongWindow)
			shortTail := tail(observations, cfg.ShortWindow)
			carry.Volume30 = sum(longTail)
			carry.Mean30 = mean(longTail)
			carry.Std30 = sampleStd(longTail)
			carry.Mean7 = mean(shortTail)
			carry.Trend = carry.Mean7 - carry.Mean30
			daysSince = 0
		} else if daysSince >= 0 {
			daysSince++
		}

		f := carry
		f.DaysSinceSale = daysSince
		if prevSold {
			f.SoldYesterday = 1
		}

		// Calendar windows over the trailing ShortWindow dates, today included
		start := max(0, i-cfg.ShortWindow+1)
		var saleDays int
		var windowVolume float64
		for j := start; j <= i; j++ {
			if rows[j].Sold(company) {
				saleDays++
			}
			windowVolume += rows[j].VolumeByCompany[company]
		}
		f.Freq7 = float64(saleDays)
		f.RollMean7 = windowVolume / float64(i-start+1)

		if row.TotalVolume > 0 && volume/row.TotalVolume > 0.5 {
			f.Dominant = 1
		}

		out[i] = f
		prevSold = sold
	}

	return out
}

// attachCompanyMeans fills the cross-company daily means over companies
// that have sale history as of each date
func attachCompanyMeans(rows []DailyRow) {
	for i := range rows {
		var mean30, std30, trend, daysSince float64
		n := 0
		for _, f := range rows[i].Companies {
			if f.DaysSinceSale < 0 {
				continue // no history yet
			}
			mean30 += f.Mean30
			std30 += f.Std30
			trend += f.Trend
			daysSince += f.DaysSinceSale
			n++
		}
		if n == 0 {
			rows[i].MeanCompanyMean30 = math.NaN()
			rows[i].MeanCompanyStd30 = math.NaN()
			rows[i].MeanCompanyTrend = math.NaN()
			rows[i].MeanCompanyDaysSince = math.NaN()
			continue
		}
		rows[i].MeanCompanyMean30 = mean30 / float64(n)
		rows[i].MeanCompanyStd30 = std30 / float64(n)
		rows[i].MeanCompanyTrend = trend / float64(n)
		rows[i].MeanCompanyDaysSince = daysSince / float64(n)
	}
}

// tail returns the last n elements of xs
func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}

// sampleStd computes the sample standard deviation; a single observation
// yields 0, not NaN
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
