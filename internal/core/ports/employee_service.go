package ports

import (
	"context"

	"github.com/99minutos/employee-management/internal/core/domain"
)

// EmployeeService is the employee directory use-case surface.
type EmployeeService interface {
	Create(ctx context.Context, draft domain.EmployeeDraft) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	Update(ctx context.Context, id int64, draft domain.EmployeeDraft) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]domain.Employee, error)
	Filter(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Employee, error)
}
