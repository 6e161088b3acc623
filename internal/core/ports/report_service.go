package ports

import (
	"context"

	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/report"
)

// ReportService computes aggregates and renders exportable reports.
type ReportService interface {
	CountByDepartment(ctx context.Context) ([]domain.GroupedCount, error)
	CountByJobTitle(ctx context.Context) ([]domain.GroupedCount, error)
	// Export renders the named report fully before returning it, so a
	// failure never yields a partial file.
	Export(ctx context.Context, kind report.Kind) (*report.File, error)
}

// ReportArchive keeps a copy of every exported report.
type ReportArchive interface {
	Store(ctx context.Context, file *report.File) error
}
