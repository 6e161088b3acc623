package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/ports"
	"github.com/99minutos/employee-management/internal/pkg/validation"
	"github.com/99minutos/employee-management/pkg/keylock"
)

// EmployeeService is the employee directory. Authorization happens before
// these methods are called; the service itself is role-agnostic.
type EmployeeService struct {
	repo     ports.EmployeeRepository
	validate *validation.Validator
	locks    *keylock.Striped
	logger   zerolog.Logger
}

func NewEmployeeService(repo ports.EmployeeRepository, logger zerolog.Logger) *EmployeeService {
	return &EmployeeService{
		repo:     repo,
		validate: validation.New(),
		locks:    keylock.New(0),
		logger:   logger,
	}
}

func (s *EmployeeService) Create(ctx context.Context, draft domain.EmployeeDraft) (*domain.Employee, error) {
	if err := s.validate.Struct(draft); err != nil {
		return nil, err
	}

	e := draft.Apply(domain.Employee{})
	if err := s.repo.Create(ctx, &e); err != nil {
		s.logger.Error().Err(err).Msg("failed to create employee")
		return nil, err
	}

	s.logger.Info().Int64("employee_id", e.ID).Msg("employee created")
	return &e, nil
}

func (s *EmployeeService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces every mutable field of the employee; the id is kept.
// Concurrent updates of the same id are applied one after the other.
func (s *EmployeeService) Update(ctx context.Context, id int64, draft domain.EmployeeDraft) (*domain.Employee, error) {
	if err := s.validate.Struct(draft); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(lockKey(id))
	defer unlock()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := draft.Apply(*current)
	if err := s.repo.Replace(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("employee_id", id).Msg("employee updated")
	return &updated, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.Lock(lockKey(id))
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("employee_id", id).Msg("employee deleted")
	return nil
}

func (s *EmployeeService) ListAll(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.List(ctx, domain.FilterCriteria{})
}

// Filter returns employees matching every set field of criteria. Empty
// criteria return the full list.
func (s *EmployeeService) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Employee, error) {
	return s.repo.List(ctx, criteria)
}

func lockKey(id int64) string {
	return "employee:" + strconv.FormatInt(id, 10)
}
