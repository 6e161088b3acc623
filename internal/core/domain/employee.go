package domain

import (
	"sort"
	"strings"
)

// Employee is a record in the employee directory. Role is the employee's job
// classification (e.g. "Developer"), not an authorization Role.
type Employee struct {
	ID          int64   `json:"id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Email       string  `json:"email" bson:"email"`
	PhoneNumber string  `json:"phoneNumber" bson:"phone_number"`
	Salary      float64 `json:"salary" bson:"salary"`
	Role        string  `json:"role" bson:"role"`
	Department  string  `json:"department" bson:"department"`
	JobTitle    string  `json:"jobTitle" bson:"job_title"`
}

// EmployeeDraft carries every mutable employee field. Create and Update both
// take a full draft; Update replaces all fields at once.
type EmployeeDraft struct {
	Name        string  `validate:"required"`
	Email       string  `validate:"omitempty,email"`
	PhoneNumber string
	Salary      float64 `validate:"gte=0"`
	Role        string
	Department  string
	JobTitle    string
}

// Apply returns e with every mutable field replaced by the draft. The ID is kept.
func (d EmployeeDraft) Apply(e Employee) Employee {
	e.Name = d.Name
	e.Email = d.Email
	e.PhoneNumber = d.PhoneNumber
	e.Salary = d.Salary
	e.Role = d.Role
	e.Department = d.Department
	e.JobTitle = d.JobTitle
	return e
}

// FilterCriteria is an optional-field predicate over employees. A nil field
// matches everything.
type FilterCriteria struct {
	Department *string
	JobTitle   *string
	MinSalary  *float64
}

// IsEmpty reports whether no field is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.Department == nil && c.JobTitle == nil && c.MinSalary == nil
}

// Matches reports whether e satisfies every set field: department and job
// title are case-sensitive substring matches, salary is an inclusive lower bound.
func (c FilterCriteria) Matches(e Employee) bool {
	if c.Department != nil && !strings.Contains(e.Department, *c.Department) {
		return false
	}
	if c.JobTitle != nil && !strings.Contains(e.JobTitle, *c.JobTitle) {
		return false
	}
	if c.MinSalary != nil && e.Salary < *c.MinSalary {
		return false
	}
	return true
}

// GroupField names the employee field an aggregation partitions on.
type GroupField string

const (
	GroupByDepartment GroupField = "department"
	GroupByJobTitle   GroupField = "job_title"
)

// Value returns the verbatim value of the grouping field for e.
func (f GroupField) Value(e Employee) string {
	switch f {
	case GroupByJobTitle:
		return e.JobTitle
	default:
		return e.Department
	}
}

// GroupedCount pairs a group key with the number of members in the group.
type GroupedCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// CountBy partitions employees on the exact value of field. Empty values form
// their own group. Groups are sorted by key.
func CountBy(employees []Employee, field GroupField) []GroupedCount {
	counts := make(map[string]int64)
	for _, e := range employees {
		counts[field.Value(e)]++
	}
	out := make([]GroupedCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, GroupedCount{Key: k, Count: n})
	}
	SortGroupedCounts(out)
	return out
}

// SortGroupedCounts orders groups by key ascending.
func SortGroupedCounts(groups []GroupedCount) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
}
