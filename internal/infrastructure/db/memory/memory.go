// Package memory holds process-local implementations of the repositories,
// selected with STORE_DRIVER=memory. Records are copied in and out so callers
// never share state with the store.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/99minutos/employee-management/internal/core/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	seq   int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	r.seq++
	u := *user
	u.ID = strconv.FormatInt(r.seq, 10)
	r.users[u.Username] = u
	return &u, nil
}

type RoleRepository struct {
	mu    sync.RWMutex
	roles map[string]domain.Role
}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{roles: make(map[string]domain.Role)}
}

func (r *RoleRepository) FindByName(_ context.Context, name string) (domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[name]
	if !ok {
		return "", domain.ErrUnknownRole
	}
	return role, nil
}

func (r *RoleRepository) Seed(_ context.Context, roles ...domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range roles {
		if _, ok := r.roles[string(role)]; !ok {
			r.roles[string(role)] = role
		}
	}
	return nil
}

// EmployeeRepository keeps employees in insertion order.
type EmployeeRepository struct {
	mu      sync.RWMutex
	records map[int64]domain.Employee
	order   []int64
	nextID  int64
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{records: make(map[int64]domain.Employee)}
}

func (r *EmployeeRepository) Create(_ context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.records[e.ID] = *e
	r.order = append(r.order, e.ID)
	return nil
}

func (r *EmployeeRepository) FindByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.records[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return &e, nil
}

func (r *EmployeeRepository) Replace(_ context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[e.ID]; !ok {
		return domain.ErrEmployeeNotFound
	}
	r.records[e.ID] = *e
	return nil
}

func (r *EmployeeRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(r.records, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *EmployeeRepository) List(_ context.Context, criteria domain.FilterCriteria) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Employee, 0, len(r.order))
	for _, id := range r.order {
		if e := r.records[id]; criteria.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *EmployeeRepository) CountBy(ctx context.Context, field domain.GroupField) ([]domain.GroupedCount, error) {
	all, err := r.List(ctx, domain.FilterCriteria{})
	if err != nil {
		return nil, err
	}
	return domain.CountBy(all, field), nil
}
