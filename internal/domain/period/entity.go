package period

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType enum
type PeriodType string

const (
	PeriodTypeWeekly      PeriodType = "weekly"
	PeriodTypeSemiMonthly PeriodType = "semi_monthly"
	PeriodTypeMonthly     PeriodType = "monthly"
)

// Status enum - transitions are owned exclusively by the lifecycle service.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusCalculating Status = "calculating"
	StatusCalculated  Status = "calculated"
	StatusReviewing   Status = "reviewing"
	StatusApproved    Status = "approved"
	StatusFinalized   Status = "finalized"
	StatusCancelled   Status = "cancelled"
)

// PayrollPeriod - one bounded pay cycle with a single pay date
type PayrollPeriod struct {
	ID              string
	CompanyID       string
	PeriodType      PeriodType
	StartDate       time.Time
	EndDate         time.Time
	PayDate         time.Time
	Status          Status
	EmployeeCount   int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	PreparedBy      *string
	ApprovedBy      *string
	CancelReason    *string
	LockedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Locked reports whether the period can no longer accept calculation writes.
func (p PayrollPeriod) Locked() bool {
	return p.LockedAt != nil || p.Status == StatusFinalized
}

// Terminal reports whether no further transitions are possible.
func (p PayrollPeriod) Terminal() bool {
	return p.Status == StatusFinalized || p.Status == StatusCancelled
}

// StandardDays returns the expected working-day count for proration.
func (p PayrollPeriod) StandardDays() int {
	return int(p.EndDate.Sub(p.StartDate).Hours()/24) + 1
}

// transitions holds the forward edges of the status graph. Cancellation is
// handled separately because it is reachable from every non-finalized state.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusCalculating},
	StatusCalculating: {StatusCalculating, StatusCalculated},
	StatusCalculated:  {StatusCalculating, StatusReviewing},
	StatusReviewing:   {StatusApproved},
	StatusApproved:    {StatusFinalized},
}

// CanTransition reports whether from -> to is a legal status move.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return from != StatusFinalized && from != StatusCancelled
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
