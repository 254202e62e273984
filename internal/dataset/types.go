// Package dataset loads the raw transaction and market workbooks and merges
// them into the record stream consumed by feature engineering.
package dataset

import (
	"math"
	"time"
)

// Transaction represents a single trade from the transactions workbook
type Transaction struct {
	Date             time.Time `json:"date"`
	Time             string    `json:"time"`
	Company          string    `json:"company"`
	SellerID         string    `json:"seller_id"`
	BuyerID          string    `json:"buyer_id"`
	Price            float64   `json:"price"`
	Amount           float64   `json:"amount"`
	Product          string    `json:"product"`
	OriginCity       string    `json:"origin_city"`
	OriginState      string    `json:"origin_state"`
	DestinationCity  string    `json:"destination_city"`
	DestinationState string    `json:"destination_state"`
}

// IsValid checks if the transaction carries usable data
func (t Transaction) IsValid() bool {
	return !t.Date.IsZero() && t.Company != "" && t.Amount >= 0 && t.Price >= 0
}

// MarketQuote represents one reference-price row from the market workbook,
// keyed by (date, product, origin city, origin state)
type MarketQuote struct {
	Date        time.Time `json:"date"`
	Product     string    `json:"product"`
	OriginCity  string    `json:"origin_city"`
	OriginState string    `json:"origin_state"`
	MarketPrice float64   `json:"market_price"`
	Benchmark   float64   `json:"benchmark"` // exchange futures price (CBOT)
	Dollar      float64   `json:"dollar"`    // benchmark converted at the USD rate
}

// Key returns the join key for the quote
func (q MarketQuote) Key() QuoteKey {
	return QuoteKey{
		Date:        q.Date,
		Product:     q.Product,
		OriginCity:  q.OriginCity,
		OriginState: q.OriginState,
	}
}

// QuoteKey identifies a market quote for the transaction join
type QuoteKey struct {
	Date        time.Time
	Product     string
	OriginCity  string
	OriginState string
}

// MergedRecord is a transaction enriched with its market quote.
// Benchmark fields are NaN when no quote matched the transaction key.
type MergedRecord struct {
	Transaction
	MarketPrice float64 `json:"market_price"`
	Benchmark   float64 `json:"benchmark"`
	Dollar      float64 `json:"dollar"`
}

// HasQuote reports whether the record matched a market quote
func (m MergedRecord) HasQuote() bool {
	return !math.IsNaN(m.Benchmark)
}
