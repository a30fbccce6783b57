package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrSummaryUnavailable signals missing validated attendance for the window.
// The resolver treats this as a warning, never a calculation failure.
var ErrSummaryUnavailable = errors.New("attendance summary unavailable")

// Summary - validated time totals supplied by the attendance collaborator.
type Summary struct {
	EmployeeID    string
	DaysWorked    int
	HoursWorked   decimal.Decimal
	OvertimeHours decimal.Decimal
}

// Provider is the inbound attendance collaborator. Implementations must
// honor context deadlines; a timeout surfaces as a per-employee warning.
type Provider interface {
	Summary(ctx context.Context, employeeID string, companyID string, from, to time.Time) (Summary, error)
}
