// Command pipeline runs the full training pipeline: load the transaction
// and market workbooks, engineer daily features, train one classifier per
// company with temporal cross-validation, calibrate thresholds and persist
// the model and reports.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"agroforecast/internal/boost"
	"agroforecast/internal/config"
	"agroforecast/internal/dataset"
	"agroforecast/internal/features"
	"agroforecast/internal/infrastructure"
	"agroforecast/internal/report"
	"agroforecast/internal/train"
)

func main() {
	transactionsFile := flag.String("transactions", "", "transactions workbook (defaults to configured path)")
	marketFile := flag.String("market", "", "market workbook (defaults to configured path)")
	flag.Parse()

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
	start := time.Now()
	logger.InfoContext(ctx, "starting training pipeline",
		"transactions", *transactionsFile,
		"market", *marketFile,
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
	usdRate := fx.Rate(ctx)
	logger.InfoContext(ctx, "resolved USD rate", "rate", usdRate)

	records, err := dataset.Merge(transactions, quotes, usdRate)
	if err != nil {
		logger.Error("Failed to merge transactions with market quotes", "error", err)
		os.Exit(1)
	}
	universe := dataset.Companies(records)
	logger.InfoContext(ctx, "merged dataset",
		"records", len(records),
		"companies", len(universe),
	)

	featureCfg := features.Config{
		TopProducts: cfg.Pipeline.TopProducts,
		LongWindow:  cfg.Pipeline.LongWindow,
		ShortWindow: cfg.Pipeline.ShortWindow,
	}
	rows, topProducts := features.Build(records, universe, featureCfg)

	X, featureNames, dates := features.BuildMatrix(rows, universe, topProducts)
	y, labels := features.EncodeTarget(rows)
	if len(labels) == 0 {
		logger.Error("No selling companies in the dataset, nothing to train")
		os.Exit(1)
	}
	logger.InfoContext(ctx, "feature matrix ready",
		"samples", len(X),
		"features", len(featureNames),
		"targets", len(labels),
	)

	params := boost.DefaultParams()
	params.Rounds = cfg.Pipeline.Rounds
	params.MaxDepth = cfg.Pipeline.MaxDepth
	params.LearningRate = cfg.Pipeline.LearningRate
	params.Seed = cfg.Pipeline.Seed

	trainer := train.NewTrainer(params, cfg.Pipeline.TestSize, cfg.Pipeline.CVFolds, cfg.Pipeline.FitConcurrency, logger)
	model, trainReport, err := trainer.Train(ctx, X, featureNames, y, labels, dates)
	if err != nil {
		logger.Error("Training failed", "error", err)
		os.Exit(1)
	}

	now := time.Now()
	modelPath, err := report.SaveModel(model, cfg.Paths.ModelsDir, now)
	if err != nil {
		logger.Error("Failed to save model", "error", err)
		os.Exit(1)
	}
	reportPath, err := report.WriteText(trainReport, cfg.Paths.ReportsDir, now)
	if err != nil {
		logger.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
	thresholdsPath, err := report.WriteThresholdsJSON(trainReport, cfg.Paths.ReportsDir, now)
	if err != nil {
		logger.Error("Failed to write thresholds", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "training pipeline complete",
		"run_id", trainReport.RunID,
		"duration", time.Since(start),
		"test_f1", trainReport.TestMetrics.F1,
		"model", modelPath,
		"report", reportPath,
		"thresholds", thresholdsPath,
	)
}
