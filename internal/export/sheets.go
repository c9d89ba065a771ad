package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"contas/internal/services"
)

// SheetsExporter appends report rows to a year-named tab of a Google
// spreadsheet, one row per category summary line.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

var _ ReportExporter = (*SheetsExporter)(nil)

// SheetsConfig carries the exporter settings resolved from the environment.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	// SheetBase is prefixed with the report year, e.g. "2026 Relatórios".
	SheetBase string
}

// NewSheetsExporter authenticates with service-account credentials, either
// inline JSON or a key file.
func NewSheetsExporter(ctx context.Context, cfg SheetsConfig) (*SheetsExporter, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if cfg.SheetBase == "" {
		cfg.SheetBase = "Relatórios"
	}

	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentials = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetBase:     cfg.SheetBase,
	}, nil
}

// ExportMonthlyReport appends the category summary, plus one totals row, to
// the report year's tab.
func (e *SheetsExporter) ExportMonthlyReport(ctx context.Context, report services.Report) error {
	sheet := fmt.Sprintf("%d %s", report.Year, e.sheetBase)

	rows := make([][]any, 0, len(report.Categories)+1)
	for _, row := range report.Categories {
		rows = append(rows, []any{
			fmt.Sprintf("%04d-%02d", report.Year, report.Month),
			row.Category.Name,
			row.TargetPercent,
			row.RealPercentOfIncome,
			row.TotalSpent,
			string(row.Status),
		})
	}
	rows = append(rows, []any{
		fmt.Sprintf("%04d-%02d", report.Year, report.Month),
		"TOTAL",
		"",
		"",
		report.TotalExpenses,
		string(report.Health.Status),
	})

	rng := fmt.Sprintf("%s!A:F", sheet)
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng,
		&gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report rows to %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Monthly report exported",
		"year", report.Year,
		"month", report.Month,
		"rows", len(rows),
		"sheet", sheet)
	return nil
}
