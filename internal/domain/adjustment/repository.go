package adjustment

import "context"

// AdjustmentRepository persists manual corrections. Decide is the only
// mutation and refuses to touch a terminal row.
type AdjustmentRepository interface {
	Create(ctx context.Context, a Adjustment) (Adjustment, error)
	GetByID(ctx context.Context, id string, companyID string) (Adjustment, error)
	ListByPeriod(ctx context.Context, periodID string, companyID string, status *ApprovalStatus) ([]Adjustment, error)

	// Decide flips a pending adjustment to approved/rejected. Returns
	// ErrAlreadyDecided when the stored status is no longer pending.
	Decide(ctx context.Context, id string, companyID string, status ApprovalStatus, approverID string, rejectReason *string) (Adjustment, error)

	// ApprovedForPeriod returns approved adjustments to merge into the next
	// calculation run, keyed by employee and component code.
	ApprovedForPeriod(ctx context.Context, periodID string, companyID string) ([]Adjustment, error)
}
