// Command report renders a single report once and prints it as JSON.
//
//	report [category|trend] [rentals|revenue]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/config"
	"github.com/samirwankhede/pagila-reports/internal/logger"
	reportsService "github.com/samirwankhede/pagila-reports/internal/service/reports"
	"github.com/samirwankhede/pagila-reports/internal/store"
	"github.com/samirwankhede/pagila-reports/internal/store/rentals"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, os.Args[1:]); err != nil {
		log.Error("report failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	reportArg, metricArg := string(rentals.ReportByCategory), string(rentals.MetricRentals)
	if len(args) > 0 {
		reportArg = args[0]
	}
	if len(args) > 1 {
		metricArg = args[1]
	}
	report, err := rentals.ParseReport(reportArg)
	if err != nil {
		return err
	}
	metric, err := rentals.ParseMetric(metricArg)
	if err != nil {
		return err
	}

	connector, err := store.NewConnector(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	svc := reportsService.NewReportsService(log, rentals.NewRentalsRepository(store.NewDB(connector, log), log), nil)

	v, err := svc.Render(ctx, report, metric)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
