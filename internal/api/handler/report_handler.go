package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/employee-management/internal/api/metrics"
	"github.com/99minutos/employee-management/internal/core/ports"
	"github.com/99minutos/employee-management/internal/report"
)

type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// ExportEmployees downloads every employee as CSV.
//
// @Summary      Employee report
// @Tags         reports
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      500  {object}  ErrorResponse
// @Router       /employees/report [get]
func (h *ReportHandler) ExportEmployees(c echo.Context) error {
	return h.export(c, report.KindEmployees)
}

// ExportByDepartment downloads employee counts per department as CSV.
//
// @Summary      Department counts report
// @Tags         reports
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      500  {object}  ErrorResponse
// @Router       /employees/report/department/export [get]
func (h *ReportHandler) ExportByDepartment(c echo.Context) error {
	return h.export(c, report.KindDepartmentCounts)
}

// ExportByJobTitle downloads employee counts per job title as CSV.
//
// @Summary      Job title counts report
// @Tags         reports
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      500  {object}  ErrorResponse
// @Router       /employees/report/job-title/export [get]
func (h *ReportHandler) ExportByJobTitle(c echo.Context) error {
	return h.export(c, report.KindJobTitleCounts)
}

// export only writes to the response once the whole file is rendered, so
// failures surface as an error envelope instead of a truncated download.
func (h *ReportHandler) export(c echo.Context, kind report.Kind) error {
	start := time.Now()
	file, err := h.service.Export(c.Request().Context(), kind)
	metrics.ReportRenderDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReportsExportedTotal.WithLabelValues(string(kind), "error").Inc()
		return err
	}

	metrics.ReportsExportedTotal.WithLabelValues(string(kind), "ok").Inc()
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}
