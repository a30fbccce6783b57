package memory

import (
	"context"
	"sync"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
)

type ComponentStore struct {
	mu          sync.RWMutex
	components  map[string]component.SalaryComponent
	assignments map[string]component.Assignment
	// finalizedCodes marks component codes carried by a finalized run.
	finalizedCodes map[string]bool
}

func NewComponentStore() *ComponentStore {
	return &ComponentStore{
		components:     make(map[string]component.SalaryComponent),
		assignments:    make(map[string]component.Assignment),
		finalizedCodes: make(map[string]bool),
	}
}

// MarkFinalized records that code appears in a finalized run's line items.
func (s *ComponentStore) MarkFinalized(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizedCodes[code] = true
}

func (s *ComponentStore) Create(_ context.Context, c component.SalaryComponent) (component.SalaryComponent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.components {
		if existing.CompanyID == c.CompanyID && existing.Code == c.Code {
			return component.SalaryComponent{}, component.ErrComponentCodeExists
		}
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.components[c.ID] = c
	return c, nil
}

func (s *ComponentStore) GetByID(_ context.Context, id string, companyID string) (component.SalaryComponent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.components[id]
	if !ok || c.CompanyID != companyID {
		return component.SalaryComponent{}, component.ErrComponentNotFound
	}
	return c, nil
}

func (s *ComponentStore) GetByCode(_ context.Context, code string, companyID string) (component.SalaryComponent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.components {
		if c.CompanyID == companyID && c.Code == code {
			return c, nil
		}
	}
	return component.SalaryComponent{}, component.ErrComponentNotFound
}

func (s *ComponentStore) List(_ context.Context, companyID string, activeOnly bool) ([]component.SalaryComponent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var components []component.SalaryComponent
	for _, c := range s.components {
		if c.CompanyID != companyID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		components = append(components, c)
	}
	return components, nil
}

func (s *ComponentStore) Deactivate(_ context.Context, id string, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.components[id]
	if !ok || c.CompanyID != companyID {
		return component.ErrComponentNotFound
	}
	c.IsActive = false
	c.UpdatedAt = time.Now()
	s.components[id] = c
	return nil
}

func (s *ComponentStore) IsReferencedByFinalizedRun(_ context.Context, code string, _ string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalizedCodes[code], nil
}

func (s *ComponentStore) CreateAssignment(_ context.Context, a component.Assignment, _ string) (component.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.assignments {
		if existing.EmployeeID == a.EmployeeID && existing.ComponentID == a.ComponentID && existing.Overlaps(a) {
			return component.Assignment{}, component.ErrOverlappingAssignment
		}
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.assignments[a.ID] = a
	return a, nil
}

func (s *ComponentStore) GetAssignmentsForEmployee(_ context.Context, employeeID string, companyID string, activeOn *time.Time) ([]component.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var assignments []component.Assignment
	for _, a := range s.assignments {
		if a.EmployeeID != employeeID {
			continue
		}
		c, ok := s.components[a.ComponentID]
		if !ok || c.CompanyID != companyID {
			continue
		}
		if activeOn != nil && (!a.ActiveOn(*activeOn) || !c.IsActive) {
			continue
		}
		code := c.Code
		typ := c.Type
		a.ComponentCode = &code
		a.ComponentType = &typ
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (s *ComponentStore) EndAssignment(_ context.Context, id string, _ string, endDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments[id]
	if !ok {
		return component.ErrAssignmentNotFound
	}
	a.EndDate = &endDate
	a.UpdatedAt = time.Now()
	s.assignments[id] = a
	return nil
}
