// Command predict scores every company for a requested date using the most
// recently trained model and writes the forecast as a CSV.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"agroforecast/internal/config"
	"agroforecast/internal/dataset"
	"agroforecast/internal/features"
	"agroforecast/internal/infrastructure"
	"agroforecast/internal/predict"
	"agroforecast/internal/report"
)

func main() {
	dateArg := flag.String("date", "", "date to forecast, YYYY-MM-DD (required)")
	transactionsFile := flag.String("transactions", "", "transactions workbook (defaults to configured path)")
	marketFile := flag.String("market", "", "market workbook (defaults to configured path)")
	flag.Parse()

	if *dateArg == "" {
		flag.Usage()
		os.Exit(2)
	}
	date, err := time.Parse("2006-01-02", *dateArg)
	if err != nil {
		slog.Error("Invalid date, expected YYYY-MM-DD", "date", *dateArg, "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.InitializeLogger(cfg.Logging)

	if *transactionsFile == "" {
		*transactionsFile = cfg.Paths.TransactionsFile
	}
	if *marketFile == "" {
		*marketFile = cfg.Paths.MarketFile
	}
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("Failed to create output directories", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	model, modelPath, err := report.LoadLatestModel(cfg.Paths.ModelsDir)
	if err != nil {
		logger.Error("Failed to load model", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "loaded model",
		"path", modelPath,
		"companies", len(model.Labels),
	)

	transactions, err := dataset.LoadTransactions(*transactionsFile)
	if err != nil {
		logger.Error("Failed to load transactions workbook", "error", err)
		os.Exit(1)
	}
	quotes, err := dataset.LoadMarket(*marketFile)
	if err != nil {
		logger.Error("Failed to load market workbook", "error", err)
		os.Exit(1)
	}

	fx := dataset.NewFXClient(cfg.FX.URL, cfg.FX.Timeout, cfg.FX.FallbackRate, cfg.FX.RPS, logger)
	records, err := dataset.Merge(transactions, quotes, fx.Rate(ctx))
	if err != nil {
		logger.Error("Failed to merge transactions with market quotes", "error", err)
		os.Exit(1)
	}
	universe := dataset.Companies(records)

	featureCfg := features.Config{
		TopProducts: cfg.Pipeline.TopProducts,
		LongWindow:  cfg.Pipeline.LongWindow,
		ShortWindow: cfg.Pipeline.ShortWindow,
	}
	predictor, err := predict.New(model, featureCfg, logger)
	if err != nil {
		logger.Error("Failed to build predictor", "error", err)
		os.Exit(1)
	}

	result, err := predictor.ForDate(ctx, records, universe, date)
	if err != nil {
		logger.Error("Prediction failed", "date", *dateArg, "error", err)
		os.Exit(1)
	}

	outPath := filepath.Join(cfg.Paths.PredictionsDir,
		fmt.Sprintf("predictions_%s.csv", date.Format("20060102")))
	if err := writeCSV(outPath, result); err != nil {
		logger.Error("Failed to write predictions", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Forecast for %s\n", result.Date.Format("2006-01-02"))
	var sellers int
	for _, p := range result.Predictions {
		marker := " "
		if p.WillSell {
			marker = "*"
			sellers++
		}
		fmt.Printf("  %s %-32s p=%.4f (cutoff %.4f)\n", marker, p.Company, p.Probability, p.Threshold)
	}
	logger.InfoContext(ctx, "forecast complete",
		"date", *dateArg,
		"synthesized", result.Future,
		"companies", len(result.Predictions),
		"predicted_sellers", sellers,
		"output", outPath,
	)
}

func writeCSV(path string, result *predict.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"date", "company", "probability", "threshold", "will_sell"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range result.Predictions {
		record := []string{
			result.Date.Format("2006-01-02"),
			p.Company,
			strconv.FormatFloat(p.Probability, 'f', 6, 64),
			strconv.FormatFloat(p.Threshold, 'f', 6, 64),
			strconv.FormatBool(p.WillSell),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write prediction row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
