package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// FXClient fetches the USD exchange rate used to currency-adjust benchmark
// prices. Lookups are best-effort: any failure returns the configured
// fallback rate so the pipeline never blocks on the network.
type FXClient struct {
	url      string
	fallback float64
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewFXClient creates a currency-rate client with a bounded timeout
func NewFXClient(url string, timeout time.Duration, fallback float64, rps float64, logger *slog.Logger) *FXClient {
	if logger == nil {
		logger = slog.Default()
	}
	if rps <= 0 {
		rps = 1
	}
	return &FXClient{
		url:      url,
		fallback: fallback,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   logger,
	}
}

// fxResponse mirrors the awesomeapi quote payload
type fxResponse map[string]struct {
	Bid string `json:"bid"`
}

// Rate returns the current USD rate, or the fallback on any failure
func (c *FXClient) Rate(ctx context.Context) float64 {
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.WarnContext(ctx, "fx rate limiter interrupted, using fallback",
			"fallback", c.fallback, "error", err)
		return c.fallback
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "fx rate lookup failed, using fallback",
			"url", c.url, "fallback", c.fallback, "error", err)
		return c.fallback
	}

	c.logger.InfoContext(ctx, "fetched usd rate", "rate", rate)
	return rate
}

func (c *FXClient) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload fxResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	for _, quote := range payload {
		bid, err := strconv.ParseFloat(quote.Bid, 64)
		if err != nil {
			return 0, fmt.Errorf("parse bid %q: %w", quote.Bid, err)
		}
		if bid <= 0 {
			return 0, fmt.Errorf("non-positive bid %f", bid)
		}
		return bid, nil
	}

	return 0, fmt.Errorf("empty quote payload")
}
