package export

import (
	"context"
	"sync"

	"contas/internal/services"
)

// MemoryExporter collects exported reports in memory. It stands in for the
// Sheets exporter in tests and when no credentials are configured.
type MemoryExporter struct {
	mu      sync.Mutex
	reports []services.Report
}

var _ ReportExporter = (*MemoryExporter)(nil)

func NewMemoryExporter() *MemoryExporter {
	return &MemoryExporter{}
}

func (e *MemoryExporter) ExportMonthlyReport(_ context.Context, report services.Report) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, report)
	return nil
}

// Reports returns a copy of everything exported so far.
func (e *MemoryExporter) Reports() []services.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]services.Report(nil), e.reports...)
}
