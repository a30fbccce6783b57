package memory

import (
	"context"
	"sync"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/attendance"
	"github.com/payrollhq/payroll-engine-go/internal/domain/identity"
)

// AttendanceStub serves pre-seeded attendance summaries keyed by employee.
type AttendanceStub struct {
	mu        sync.RWMutex
	summaries map[string]attendance.Summary
	// Err, when set, is returned for every lookup.
	Err error
}

func NewAttendanceStub() *AttendanceStub {
	return &AttendanceStub{summaries: make(map[string]attendance.Summary)}
}

func (s *AttendanceStub) Seed(employeeID string, summary attendance.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary.EmployeeID = employeeID
	s.summaries[employeeID] = summary
}

func (s *AttendanceStub) Summary(_ context.Context, employeeID string, _ string, _, _ time.Time) (attendance.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Err != nil {
		return attendance.Summary{}, s.Err
	}
	summary, ok := s.summaries[employeeID]
	if !ok {
		return attendance.Summary{}, attendance.ErrSummaryUnavailable
	}
	return summary, nil
}

// IdentityStub serves a fixed employee roster.
type IdentityStub struct {
	mu        sync.RWMutex
	employees map[string]identity.Employee
}

func NewIdentityStub() *IdentityStub {
	return &IdentityStub{employees: make(map[string]identity.Employee)}
}

func (s *IdentityStub) Add(e identity.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *IdentityStub) Employee(_ context.Context, employeeID string, companyID string) (identity.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[employeeID]
	if !ok || e.CompanyID != companyID {
		return identity.Employee{}, identity.ErrEmployeeNotFound
	}
	return e, nil
}

func (s *IdentityStub) ActiveEmployees(_ context.Context, companyID string) ([]identity.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var employees []identity.Employee
	for _, e := range s.employees {
		if e.CompanyID == companyID && e.Eligible() {
			employees = append(employees, e)
		}
	}
	return employees, nil
}
