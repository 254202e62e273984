// Package features turns merged transaction records into a calendar-complete
// daily feature table with per-company trailing statistics and the
// multi-label sold-set target.
package features

import (
	"math"
	"time"
)

// Config controls window sizes and the product share table
type Config struct {
	TopProducts int // number of most frequent products tracked as share columns
	LongWindow  int // trailing observation window for sum/mean/std
	ShortWindow int // trailing observation window for the short mean and trend
}

// DefaultConfig returns the reference configuration
func DefaultConfig() Config {
	return Config{
		TopProducts: 5,
		LongWindow:  30,
		ShortWindow: 7,
	}
}

// IsValid checks the configuration
func (c Config) IsValid() bool {
	return c.TopProducts > 0 && c.ShortWindow > 0 && c.LongWindow > c.ShortWindow
}

// CompanyFeatures holds the trailing statistics for one company on one date.
// All values are computed from information available up to and including
// that date; nothing later leaks in.
type CompanyFeatures struct {
	Volume30      float64 `json:"volume_30"`       // trailing sum over the long observation window
	Mean30        float64 `json:"mean_30"`         // trailing mean over the long observation window
	Std30         float64 `json:"std_30"`          // trailing sample std, 0 for a single observation
	Mean7         float64 `json:"mean_7"`          // trailing mean over the short observation window
	Trend         float64 `json:"trend"`           // Mean7 - Mean30, positive means accelerating
	DaysSinceSale float64 `json:"days_since_sale"` // calendar days since last sale, -1 before first sale
	SoldYesterday float64 `json:"sold_yesterday"`  // 1 if the company sold on the preceding calendar date
	Freq7         float64 `json:"freq_7"`          // sale-days among the trailing 7 calendar dates (0-7)
	RollMean7     float64 `json:"roll_mean_7"`     // mean daily volume over the trailing 7 calendar dates
	Dominant      float64 `json:"dominant"`        // 1 if share of that day's total volume exceeds 0.5
}

// DailyRow is one record per calendar date summarizing market and
// per-company activity
type DailyRow struct {
	Date time.Time `json:"date"`

	// Global aggregates
	TotalVolume          float64            `json:"total_volume"`
	MeanPrice            float64            `json:"mean_price"` // NaN on dates without transactions
	DistinctProducts     int                `json:"distinct_products"`
	TransactionCount     int                `json:"transaction_count"`
	Weekday              int                `json:"weekday"`
	Month                int                `json:"month"`
	Quarter              int                `json:"quarter"`
	ProductShare         map[string]float64 `json:"product_share"` // top-N products, share of transaction count
	DistinctOriginStates int                `json:"distinct_origin_states"`
	MeanSpread           float64            `json:"mean_spread"` // mean(price - benchmark), NaN without benchmark rows
	DistinctRoutes       int                `json:"distinct_routes"`
	MeanAmount           float64            `json:"mean_amount"` // NaN on dates without transactions

	// Cross-company daily means over companies with sale history
	MeanCompanyMean30    float64 `json:"mean_company_mean_30"`
	MeanCompanyStd30     float64 `json:"mean_company_std_30"`
	MeanCompanyTrend     float64 `json:"mean_company_trend"`
	MeanCompanyDaysSince float64 `json:"mean_company_days_since"`

	// Per-company volume and trailing statistics
	VolumeByCompany map[string]float64         `json:"volume_by_company"`
	Companies       map[string]CompanyFeatures `json:"companies"`

	// Raw label: the set of companies that sold on this date
	SoldSet map[string]bool `json:"sold_set"`
}

// Sold reports whether the company sold on this date
func (r DailyRow) Sold(company string) bool {
	return r.SoldSet[company]
}

// HasTransactions reports whether any transactions underlie this date
func (r DailyRow) HasTransactions() bool {
	return r.TransactionCount > 0
}

// emptyRow builds a neutral row for a date with no underlying transactions:
// sums and counts are zero, means are NaN, the sold-set is empty
func emptyRow(date time.Time) DailyRow {
	return DailyRow{
		Date:                 date,
		MeanPrice:            math.NaN(),
		MeanSpread:           math.NaN(),
		MeanAmount:           math.NaN(),
		Weekday:              int(date.Weekday()),
		Month:                int(date.Month()),
		Quarter:              quarter(date),
		ProductShare:         map[string]float64{},
		VolumeByCompany:      map[string]float64{},
		Companies:            map[string]CompanyFeatures{},
		SoldSet:              map[string]bool{},
		MeanCompanyMean30:    math.NaN(),
		MeanCompanyStd30:     math.NaN(),
		MeanCompanyTrend:     math.NaN(),
		MeanCompanyDaysSince: math.NaN(),
	}
}

func quarter(date time.Time) int {
	return (int(date.Month())-1)/3 + 1
}
