package features

import (
	"log/slog"
	"sort"
	"time"

	apperrors "agroforecast/internal/errors"
)

// Complete reindexes the daily table onto the full contiguous date range
// [min, max] with step one day. Introduced dates get neutral rows: sums and
// counts zero, means NaN, empty sold-set. The output is sorted by date and
// has exactly (max-min).days + 1 rows.
func Complete(rows []DailyRow) []DailyRow {
	if len(rows) == 0 {
		return nil
	}

	sorted := make([]DailyRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	byDate := make(map[time.Time]DailyRow, len(sorted))
	for _, r := range sorted {
		byDate[r.Date] = r
	}

	first := sorted[0].Date
	last := sorted[len(sorted)-1].Date

	var completed []DailyRow
	filled := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if row, ok := byDate[d]; ok {
			completed = append(completed, row)
		} else {
			completed = append(completed, emptyRow(d))
			filled++
		}
	}

	if filled > 0 {
		slog.Debug("completed calendar",
			"range_start", first.Format("2006-01-02"),
			"range_end", last.Format("2006-01-02"),
			"observed", len(rows),
			"filled_gaps", filled,
		)
	}

	return completed
}

// Extend appends rows up to the requested future date. Intermediate dates
// get neutral rows; the target date gets a synthetic row that carries
// forward the last observed row's price-level fields (mean price, spread,
// product shares) and zeroes every transaction-count-like aggregate. The
// sold-set stays empty: nothing has traded on a future date.
func Extend(rows []DailyRow, date time.Time) ([]DailyRow, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("cannot extend an empty daily table")
	}

	last := rows[len(rows)-1]
	if !date.After(last.Date) {
		return nil, apperrors.NewValidationError("extension date must be after the last known date").
			WithContext("date", date.Format("2006-01-02")).
			WithContext("last_known", last.Date.Format("2006-01-02"))
	}

	extended := make([]DailyRow, len(rows), len(rows)+1)
	copy(extended, rows)

	for d := last.Date.AddDate(0, 0, 1); d.Before(date); d = d.AddDate(0, 0, 1) {
		extended = append(extended, emptyRow(d))
	}

	synthetic := emptyRow(date)
	synthetic.MeanPrice = last.MeanPrice
	synthetic.MeanSpread = last.MeanSpread
	for p, share := range last.ProductShare {
		synthetic.ProductShare[p] = share
	}
	extended = append(extended, synthetic)

	slog.Debug("extended calendar with synthetic future date",
		"date", date.Format("2006-01-02"),
		"last_known", last.Date.Format("2006-01-02"),
	)

	return extended, nil
}

// DateRange returns the first and last dates of a daily table
func DateRange(rows []DailyRow) (time.Time, time.Time) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}
	}
	return rows[0].Date, rows[len(rows)-1].Date
}
