package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/employee-management/internal/api/metrics"
	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/ports"
)

const (
	msgEmployeeCreated = "Employee Details Stored successfully!"
	msgEmployeeUpdated = "Employee details updated successfully!"
	msgEmployeeDeleted = "Employee deleted successfully!"
)

// EmployeeHandler serves the employee directory. The same read handlers back the
// Admin (/employees), Manager (/view) and Employee (/profile) routes; the
// router decides who may reach which.
type EmployeeHandler struct {
	service ports.EmployeeService
}

func NewEmployeeHandler(service ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

type employeeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"omitempty,email"`
	PhoneNumber string  `json:"phoneNumber"`
	Salary      float64 `json:"salary" validate:"gte=0"`
	Role        string  `json:"role"`
	Department  string  `json:"department"`
	JobTitle    string  `json:"jobTitle"`
}

func (r employeeRequest) toDraft() domain.EmployeeDraft {
	return domain.EmployeeDraft{
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Salary:      r.Salary,
		Role:        r.Role,
		Department:  r.Department,
		JobTitle:    r.JobTitle,
	}
}

// List returns every employee.
//
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Success      200  {array}   domain.Employee
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	employees, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employees)
}

// Get returns one employee.
//
// @Summary      Get employee
// @Tags         employees
// @Produce      json
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  domain.Employee
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	employee, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employee)
}

// ViewAll is the Manager's read-only listing.
//
// @Summary      Directory listing
// @Tags         directory
// @Produce      json
// @Success      200  {array}   domain.Employee
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /view [get]
func (h *EmployeeHandler) ViewAll(c echo.Context) error {
	return h.List(c)
}

// ViewOne is the Manager's read-only lookup.
//
// @Summary      Directory lookup
// @Tags         directory
// @Produce      json
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  domain.Employee
// @Failure      404  {object}  ErrorResponse
// @Router       /view/{id} [get]
func (h *EmployeeHandler) ViewOne(c echo.Context) error {
	return h.Get(c)
}

// Profile is the Employee role's lookup. Any id is readable; it is not
// restricted to the caller's own record.
//
// @Summary      Employee profile
// @Tags         profile
// @Produce      json
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  domain.Employee
// @Failure      404  {object}  ErrorResponse
// @Router       /profile/{id} [get]
func (h *EmployeeHandler) Profile(c echo.Context) error {
	return h.Get(c)
}

// Create stores a new employee.
//
// @Summary      Create employee
// @Tags         employees
// @Accept       json
// @Produce      plain
// @Param        body  body      employeeRequest  true  "Employee details"
// @Success      200   {string}  string  "Employee Details Stored successfully!"
// @Failure      400   {object}  ErrorResponse
// @Router       /employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	req, err := bindEmployee(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Create(c.Request().Context(), req.toDraft()); err != nil {
		return err
	}
	metrics.EmployeeMutationsTotal.WithLabelValues("create").Inc()
	return c.String(http.StatusOK, msgEmployeeCreated)
}

// Update replaces every field of an employee.
//
// @Summary      Update employee
// @Tags         employees
// @Accept       json
// @Produce      plain
// @Param        id    path      int              true  "Employee ID"
// @Param        body  body      employeeRequest  true  "Employee details"
// @Success      200   {string}  string  "Employee details updated successfully!"
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := bindEmployee(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Update(c.Request().Context(), id, req.toDraft()); err != nil {
		return err
	}
	metrics.EmployeeMutationsTotal.WithLabelValues("update").Inc()
	return c.String(http.StatusOK, msgEmployeeUpdated)
}

// Delete removes an employee.
//
// @Summary      Delete employee
// @Tags         employees
// @Produce      plain
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {string}  string  "Employee deleted successfully!"
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	metrics.EmployeeMutationsTotal.WithLabelValues("delete").Inc()
	return c.String(http.StatusOK, msgEmployeeDeleted)
}

// Filter returns employees matching every given criterion. Department and
// job title are substring matches; salary is an inclusive minimum.
//
// @Summary      Filter employees
// @Tags         employees
// @Produce      json
// @Param        department  query     string  false  "department substring"
// @Param        jobTitle    query     string  false  "job title substring"
// @Param        salary      query     number  false  "minimum salary"
// @Success      200  {array}   domain.Employee
// @Failure      400  {object}  ErrorResponse
// @Router       /employees/filter [get]
func (h *EmployeeHandler) Filter(c echo.Context) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return err
	}
	employees, err := h.service.Filter(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employees)
}

func bindEmployee(c echo.Context) (employeeRequest, error) {
	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return req, fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be an integer", domain.ErrInvalidInput)
	}
	return id, nil
}

// parseCriteria treats absent and empty query parameters alike as unset.
func parseCriteria(c echo.Context) (domain.FilterCriteria, error) {
	var criteria domain.FilterCriteria
	if v := c.QueryParam("department"); v != "" {
		criteria.Department = &v
	}
	if v := c.QueryParam("jobTitle"); v != "" {
		criteria.JobTitle = &v
	}
	if v := c.QueryParam("salary"); v != "" {
		salary, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(salary) || math.IsInf(salary, 0) {
			return criteria, fmt.Errorf("%w: salary must be a number", domain.ErrInvalidInput)
		}
		criteria.MinSalary = &salary
	}
	return criteria, nil
}
