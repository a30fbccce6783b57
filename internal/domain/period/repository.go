package period

import (
	"context"

	"github.com/shopspring/decimal"
)

// PeriodRepository defines data access for payroll periods.
// Every method is scoped by companyID to prevent cross-company access.
type PeriodRepository interface {
	Create(ctx context.Context, p PayrollPeriod) (PayrollPeriod, error)
	GetByID(ctx context.Context, id string, companyID string) (PayrollPeriod, error)
	List(ctx context.Context, companyID string, filter PeriodFilter) ([]PayrollPeriod, int64, error)

	// UpdateStatusCAS flips status only when the stored status still equals
	// expected. Returns ErrTransitionConflict when the row was not updated.
	UpdateStatusCAS(ctx context.Context, id string, companyID string, expected, next Status, update StatusUpdate) (PayrollPeriod, error)

	// UpdateTotals writes the aggregated run totals onto the period row.
	UpdateTotals(ctx context.Context, id string, companyID string, totals Totals) error
}

// StatusUpdate carries the side fields written together with a transition.
type StatusUpdate struct {
	PreparedBy   *string
	ApprovedBy   *string
	CancelReason *string
	SetLockedAt  bool
}

// Totals is the aggregate of the latest calculation run.
type Totals struct {
	EmployeeCount int
	Gross         decimal.Decimal
	Deductions    decimal.Decimal
	Net           decimal.Decimal
}
