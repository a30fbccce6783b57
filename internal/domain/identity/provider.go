package identity

import (
	"context"
	"errors"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// EmploymentStatus enum
type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "active"
	StatusOnLeave    EmploymentStatus = "on_leave"
	StatusTerminated EmploymentStatus = "terminated"
)

// Employee - the minimal view the engine needs for eligibility checks.
type Employee struct {
	ID               string
	CompanyID        string
	DepartmentID     string
	EmploymentStatus EmploymentStatus
}

// Eligible reports whether the employee is included in calculation runs.
func (e Employee) Eligible() bool {
	return e.EmploymentStatus == StatusActive || e.EmploymentStatus == StatusOnLeave
}

// Provider is the inbound identity collaborator.
type Provider interface {
	Employee(ctx context.Context, employeeID string, companyID string) (Employee, error)
	ActiveEmployees(ctx context.Context, companyID string) ([]Employee, error)
}
