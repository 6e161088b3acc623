package ports

import (
	"context"

	"github.com/99minutos/employee-management/internal/core/domain"
)

// EmployeeRepository persists employee records. Every write replaces a whole
// record atomically; readers never observe a partially written record.
type EmployeeRepository interface {
	// Create assigns a fresh ID to e and stores it.
	Create(ctx context.Context, e *domain.Employee) error
	// FindByID returns domain.ErrEmployeeNotFound when the id is unknown.
	FindByID(ctx context.Context, id int64) (*domain.Employee, error)
	// Replace overwrites the stored record with e.ID. It returns
	// domain.ErrEmployeeNotFound when there is no such record.
	Replace(ctx context.Context, e *domain.Employee) error
	// Delete returns domain.ErrEmployeeNotFound when the id is unknown.
	Delete(ctx context.Context, id int64) error
	// List returns every employee matching criteria, in store order.
	List(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Employee, error)
	// CountBy groups all employees on the exact value of field.
	CountBy(ctx context.Context, field domain.GroupField) ([]domain.GroupedCount, error)
}
