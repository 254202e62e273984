package features

import (
	"agroforecast/internal/dataset"
)

// Build runs the full feature construction over merged records: daily
// aggregation, calendar completion and per-company feature building. The
// company universe is passed in explicitly so every stage of a run sees the
// same label ordering. Returns the completed table and the top-product list
// backing the share columns.
func Build(records []dataset.MergedRecord, universe []string, cfg Config) ([]DailyRow, []string) {
	rows, topProducts := AggregateDaily(records, cfg)
	rows = Complete(rows)
	rows = BuildCompanyFeatures(rows, universe, cfg)
	return rows, topProducts
}
