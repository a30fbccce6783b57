package adjustment

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus enum
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Adjustment - a manual correction against one employee in one period.
// Terminal adjustments are never mutated; a further correction is a new
// adjustment.
type Adjustment struct {
	ID             string
	PeriodID       string
	CompanyID      string
	EmployeeID     string
	ComponentCode  string
	OldValue       decimal.Decimal
	NewValue       decimal.Decimal
	Reason         string
	ApprovalStatus ApprovalStatus
	CreatedBy      string
	ApprovedBy     *string
	RejectReason   *string
	CreatedAt      time.Time
	DecidedAt      *time.Time
}

// Terminal reports whether the adjustment can no longer change.
func (a Adjustment) Terminal() bool {
	return a.ApprovalStatus != StatusPending
}
