// Command sheets-import copies the contracts and expenses tabs of a Google
// spreadsheet into the configured store and prints the resulting summary.
package main

import (
	"context"
	"fmt"

	"prospect/internal/backend"
	"prospect/internal/cli"
	"prospect/internal/config"
	applog "prospect/internal/log"
	"prospect/internal/services"
	"prospect/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentSheets)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	err := run(ctx, logger, cfg)
	cancel()
	if err != nil {
		cli.Fatal(logger, "Import failed", err, applog.FieldOperation, applog.OpImport)
	}
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	sheets, err := google.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	contracts, expenses, err := sheets.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", cfg.GoogleSpreadsheetID, err)
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	financeService := services.NewFinanceService(result.Store, cfg.CacheSize, cfg.CacheTTL)
	var publisher services.ChangePublisher
	if result.AMQP != nil {
		publisher = result.AMQP
	}
	recordService := services.NewRecordService(result.Store, financeService, publisher)

	imported, err := recordService.Import(ctx, cfg.GoogleSpreadsheetID, contracts, expenses)
	if err != nil {
		return fmt.Errorf("after %d contracts and %d expenses: %w", imported.Contracts, imported.Expenses, err)
	}

	summary, err := financeService.Summary(ctx)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}
	logger.Info("Import completed",
		applog.FieldOperation, applog.OpImport,
		"contracts", imported.Contracts,
		"expenses", imported.Expenses,
		"removed_contracts", imported.RemovedContracts,
		"removed_expenses", imported.RemovedExpenses,
		"recurring_monthly", summary.RecurringMonthly.StringFixed(2),
		"monthly_expenses", summary.MonthlyExpenses.StringFixed(2),
		"recurring_monthly_profit", summary.RecurringMonthlyProfit.StringFixed(2),
		"total_unpaid", summary.TotalUnpaid.StringFixed(2),
		"active_contracts", summary.ActiveContracts)
	return nil
}
