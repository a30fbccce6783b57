package component

import (
	"context"
	"time"
)

// ComponentRepository defines data access for salary components and their
// employee assignments. All methods are scoped by companyID.
type ComponentRepository interface {
	Create(ctx context.Context, c SalaryComponent) (SalaryComponent, error)
	GetByID(ctx context.Context, id string, companyID string) (SalaryComponent, error)
	GetByCode(ctx context.Context, code string, companyID string) (SalaryComponent, error)
	List(ctx context.Context, companyID string, activeOnly bool) ([]SalaryComponent, error)
	Deactivate(ctx context.Context, id string, companyID string) error

	// IsReferencedByFinalizedRun guards component immutability once a
	// finalized period carries line items for its code.
	IsReferencedByFinalizedRun(ctx context.Context, code string, companyID string) (bool, error)

	// CreateAssignment must reject overlapping windows for the same
	// employee+component atomically with the insert.
	CreateAssignment(ctx context.Context, a Assignment, companyID string) (Assignment, error)
	GetAssignmentsForEmployee(ctx context.Context, employeeID string, companyID string, activeOn *time.Time) ([]Assignment, error)
	EndAssignment(ctx context.Context, id string, companyID string, endDate time.Time) error
}
