package period

import "errors"

var (
	ErrPeriodNotFound         = errors.New("payroll period not found")
	ErrPeriodOverlaps         = errors.New("payroll period overlaps an existing period")
	ErrInvalidPeriodState     = errors.New("operation not allowed in current period status")
	ErrInvalidTransition      = errors.New("invalid period status transition")
	ErrTransitionConflict     = errors.New("period status changed concurrently, retry")
	ErrPeriodLocked           = errors.New("period is finalized and locked")
	ErrSelfApprovalNotAllowed = errors.New("approver must differ from preparer")
	ErrNoEmployees            = errors.New("period has no calculated employees to review")
	ErrCancelReasonRequired   = errors.New("cancellation requires a reason")
)
