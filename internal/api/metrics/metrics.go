// Package metrics defines the custom Prometheus metrics of the employee
// management API. Per-route HTTP metrics come from echoprometheus; everything
// here is domain level.
//
// All metrics register with the default registry through promauto on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ems"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure" (bad credentials and invalid payloads alike)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful registrations.
// Label:
//   - role: the authorization role the user was bound to
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users, by role.",
	},
	[]string{"role"},
)

// ── Employee metrics ──────────────────────────────────────────────────────────

// EmployeeMutationsTotal counts successful writes to the directory.
// Label:
//   - operation: "create", "update" or "delete"
var EmployeeMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "employee_mutations_total",
		Help:      "Total number of successful employee writes, by operation.",
	},
	[]string{"operation"},
)

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportsExportedTotal counts export requests.
// Labels:
//   - report: "employees", "department_counts" or "job_title_counts"
//   - result: "ok" or "error"
var ReportsExportedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_exported_total",
		Help:      "Total number of report exports, by report and result.",
	},
	[]string{"report", "result"},
)

// ReportRenderDuration measures the time from request to a fully rendered
// (and, when configured, archived) report.
// Label:
//   - report: see ReportsExportedTotal
var ReportRenderDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_render_duration_seconds",
		Help:      "Duration of report rendering including archiving.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"report"},
)
