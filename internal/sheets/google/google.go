// Package google reads contracts and expenses from a Google Sheets
// spreadsheet. Each record kind lives in its own tab whose first row holds
// the column headers.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"prospect/internal/config"
	"prospect/internal/core"
	"prospect/internal/records"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ records.Source = (*Client)(nil)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	contractsSheet string
	expensesSheet  string
}

type Options struct {
	SpreadsheetID  string
	ContractsSheet string
	ExpensesSheet  string
	// CredentialsJSON is a service account key.
	CredentialsJSON []byte
}

// NewFromConfig builds a read-only client from the GOOGLE_* settings.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.ValidateSheets(); err != nil {
		return nil, err
	}
	creds := []byte(strings.TrimSpace(cfg.GoogleServiceAccountJSON))
	if len(creds) == 0 {
		var err error
		creds, err = os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}
	return New(ctx, Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		ContractsSheet:  cfg.GoogleContractsSheet,
		ExpensesSheet:   cfg.GoogleExpensesSheet,
		CredentialsJSON: creds,
	})
}

func New(ctx context.Context, opts Options, extra ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	clientOpts := extra
	if len(opts.CredentialsJSON) > 0 {
		clientOpts = append([]goption.ClientOption{
			goption.WithCredentialsJSON(opts.CredentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
		}, extra...)
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets client ready",
		"contracts_sheet", opts.ContractsSheet,
		"expenses_sheet", opts.ExpensesSheet)

	return &Client{
		svc:            svc,
		spreadsheetID:  opts.SpreadsheetID,
		contractsSheet: strings.TrimSpace(opts.ContractsSheet),
		expensesSheet:  strings.TrimSpace(opts.ExpensesSheet),
	}, nil
}

// ListContracts reads the contracts tab. An unconfigured tab yields no rows.
func (c *Client) ListContracts(ctx context.Context) ([]core.Contract, error) {
	if c.contractsSheet == "" {
		return nil, nil
	}
	values, err := c.readSheet(ctx, c.contractsSheet)
	if err != nil {
		return nil, err
	}
	recs, err := parseContracts(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.contractsSheet, err)
	}
	return core.NormalizeContracts(recs), nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	if c.expensesSheet == "" {
		return nil, nil
	}
	values, err := c.readSheet(ctx, c.expensesSheet)
	if err != nil {
		return nil, err
	}
	recs, err := parseExpenses(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.expensesSheet, err)
	}
	return core.NormalizeExpenses(recs), nil
}

// ReadAll fetches both tabs concurrently.
func (c *Client) ReadAll(ctx context.Context) ([]core.Contract, []core.Expense, error) {
	var (
		contracts []core.Contract
		expenses  []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contracts, err = c.ListContracts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = c.ListExpenses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return contracts, expenses, nil
}

// readSheet returns every populated cell of a tab. Numbers come back
// unformatted; dates come back as they are displayed.
func (c *Client) readSheet(ctx context.Context, sheet string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	slog.DebugContext(ctx, "Sheet read", "sheet", sheet, "rows", len(resp.Values))
	return resp.Values, nil
}
