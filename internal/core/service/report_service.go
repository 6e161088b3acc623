package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/ports"
	"github.com/99minutos/employee-management/internal/report"
)

// ReportService aggregates the directory and renders CSV exports.
type ReportService struct {
	repo    ports.EmployeeRepository
	archive ports.ReportArchive
	logger  zerolog.Logger
}

// NewReportService builds a ReportService. archive may be nil, in which case
// exports are only returned to the caller.
func NewReportService(repo ports.EmployeeRepository, archive ports.ReportArchive, logger zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, archive: archive, logger: logger}
}

func (s *ReportService) CountByDepartment(ctx context.Context) ([]domain.GroupedCount, error) {
	return s.countBy(ctx, domain.GroupByDepartment)
}

func (s *ReportService) CountByJobTitle(ctx context.Context) ([]domain.GroupedCount, error) {
	return s.countBy(ctx, domain.GroupByJobTitle)
}

func (s *ReportService) countBy(ctx context.Context, field domain.GroupField) ([]domain.GroupedCount, error) {
	groups, err := s.repo.CountBy(ctx, field)
	if err != nil {
		return nil, err
	}
	domain.SortGroupedCounts(groups)
	return groups, nil
}

// Export renders the report in memory and archives it when an archive is
// configured. Any failure aborts the export; no partial file is returned.
func (s *ReportService) Export(ctx context.Context, kind report.Kind) (*report.File, error) {
	table, err := s.table(ctx, kind)
	if err != nil {
		return nil, err
	}

	file, err := report.Render(kind, table)
	if err != nil {
		return nil, fmt.Errorf("render %s report: %v: %w", kind, err, domain.ErrStorage)
	}

	if s.archive != nil {
		if err := s.archive.Store(ctx, file); err != nil {
			s.logger.Error().Err(err).Str("report", string(kind)).Msg("failed to archive report")
			return nil, err
		}
	}

	s.logger.Info().Str("report", string(kind)).Int("rows", file.Rows).Msg("report exported")
	return file, nil
}

func (s *ReportService) table(ctx context.Context, kind report.Kind) (report.Table, error) {
	switch kind {
	case report.KindEmployees:
		employees, err := s.repo.List(ctx, domain.FilterCriteria{})
		if err != nil {
			return report.Table{}, err
		}
		return report.EmployeeTable(employees), nil
	case report.KindDepartmentCounts:
		groups, err := s.CountByDepartment(ctx)
		if err != nil {
			return report.Table{}, err
		}
		return report.GroupedCountTable("Department", groups), nil
	case report.KindJobTitleCounts:
		groups, err := s.CountByJobTitle(ctx)
		if err != nil {
			return report.Table{}, err
		}
		return report.GroupedCountTable("Job Title", groups), nil
	default:
		return report.Table{}, fmt.Errorf("%w: unknown report %q", domain.ErrInvalidInput, kind)
	}
}
