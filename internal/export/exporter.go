// Package export pushes closed-month reports to an external destination.
// The Google Sheets exporter is the production one; the memory exporter
// backs tests and broker-less deployments.
package export

import (
	"context"

	"contas/internal/services"
)

// ReportExporter writes one period's report to the destination.
type ReportExporter interface {
	ExportMonthlyReport(ctx context.Context, report services.Report) error
}
