// Package report turns employee data into tabular exports. Everything here is
// a pure transform: rows keep the order of their input and no filtering or
// business logic happens at this layer.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/99minutos/employee-management/internal/core/domain"
)

// Kind names an exportable report.
type Kind string

const (
	KindEmployees        Kind = "employees"
	KindDepartmentCounts Kind = "department_counts"
	KindJobTitleCounts   Kind = "job_title_counts"
)

const (
	ContentTypeCSV     = "text/csv"
	groupedCountColumn = "Employee Count"
)

// FileName returns the download / archive file name for the report.
func (k Kind) FileName() string {
	switch k {
	case KindDepartmentCounts:
		return "employee_count_by_department.csv"
	case KindJobTitleCounts:
		return "employee_count_by_job_title.csv"
	default:
		return "employees_report.csv"
	}
}

// EmployeeHeader is the header row of the full employee report.
var EmployeeHeader = []string{"ID", "Name", "Email", "Phone Number", "Salary", "Role", "Department", "Job Title"}

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// File is a fully rendered report.
type File struct {
	Kind        Kind
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

// EmployeeTable projects every employee onto one row.
func EmployeeTable(employees []domain.Employee) Table {
	rows := make([][]string, len(employees))
	for i, e := range employees {
		rows[i] = []string{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			e.Email,
			e.PhoneNumber,
			strconv.FormatFloat(e.Salary, 'f', -1, 64),
			e.Role,
			e.Department,
			e.JobTitle,
		}
	}
	return Table{Header: EmployeeHeader, Rows: rows}
}

// GroupedCountTable projects grouped counts onto "<keyHeader>,Employee Count" rows.
func GroupedCountTable(keyHeader string, groups []domain.GroupedCount) Table {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Key, strconv.FormatInt(g.Count, 10)}
	}
	return Table{Header: []string{keyHeader, groupedCountColumn}, Rows: rows}
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// Render writes t as CSV into memory and wraps it as a File of the given kind.
func Render(kind Kind, t Table) (*File, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return &File{
		Kind:        kind,
		Name:        kind.FileName(),
		ContentType: ContentTypeCSV,
		Data:        buf.Bytes(),
		Rows:        len(t.Rows),
	}, nil
}
