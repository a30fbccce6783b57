package adjustment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// AdjustmentServiceImpl enforces the maker-checker rule on manual
// corrections and re-runs the engine when an approval lands on an already
// calculated period.
type AdjustmentServiceImpl struct {
	repo       adjustment.AdjustmentRepository
	periodRepo period.PeriodRepository
	runRepo    calculation.RunRepository
	engine     calculation.EngineService
	trail      audit.Trail
}

func NewAdjustmentService(
	repo adjustment.AdjustmentRepository,
	periodRepo period.PeriodRepository,
	runRepo calculation.RunRepository,
	engine calculation.EngineService,
	trail audit.Trail,
) adjustment.ManagerService {
	return &AdjustmentServiceImpl{
		repo:       repo,
		periodRepo: periodRepo,
		runRepo:    runRepo,
		engine:     engine,
		trail:      trail,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

func (s *AdjustmentServiceImpl) Submit(ctx context.Context, req adjustment.SubmitAdjustmentRequest) (adjustment.AdjustmentResponse, error) {
	if err := req.Validate(); err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	p, err := s.periodRepo.GetByID(ctx, req.PeriodID, companyID)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}
	if p.Locked() {
		return adjustment.AdjustmentResponse{}, period.ErrPeriodLocked
	}
	if p.Status == period.StatusCancelled {
		return adjustment.AdjustmentResponse{}, fmt.Errorf("period %s is cancelled: %w", p.ID, period.ErrInvalidPeriodState)
	}

	created, err := s.repo.Create(ctx, adjustment.Adjustment{
		ID:             uuid.Must(uuid.NewV7()).String(),
		PeriodID:       req.PeriodID,
		CompanyID:      companyID,
		EmployeeID:     req.EmployeeID,
		ComponentCode:  req.ComponentCode,
		OldValue:       s.currentValue(ctx, req, companyID),
		NewValue:       req.NewValue,
		Reason:         req.Reason,
		ApprovalStatus: adjustment.StatusPending,
		CreatedBy:      userID,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	s.record(ctx, companyID, userID, created, "adjustment_submitted", nil)
	return mapToResponse(created), nil
}

// currentValue looks up the latest calculated amount for the component so
// the audit trail carries the before/after pair. Zero when the employee has
// no calculated result yet.
func (s *AdjustmentServiceImpl) currentValue(ctx context.Context, req adjustment.SubmitAdjustmentRequest, companyID string) decimal.Decimal {
	results, err := s.runRepo.LatestSuccessfulResults(ctx, req.PeriodID, companyID)
	if err != nil {
		return decimal.Zero
	}
	for _, r := range results {
		if r.EmployeeID != req.EmployeeID {
			continue
		}
		for _, li := range r.LineItems {
			if li.ComponentCode == req.ComponentCode {
				return li.Amount
			}
		}
	}
	return decimal.Zero
}

// Approve flips a pending adjustment to approved. The approver must differ
// from the submitter. On a calculated period the engine re-runs so the
// approved value is reflected immediately.
func (s *AdjustmentServiceImpl) Approve(ctx context.Context, id string) (adjustment.AdjustmentResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	a, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}
	if a.Terminal() {
		return adjustment.AdjustmentResponse{}, adjustment.ErrAlreadyDecided
	}
	if a.CreatedBy == userID {
		return adjustment.AdjustmentResponse{}, adjustment.ErrSelfApproval
	}

	p, err := s.periodRepo.GetByID(ctx, a.PeriodID, companyID)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}
	if p.Locked() {
		return adjustment.AdjustmentResponse{}, period.ErrPeriodLocked
	}
	switch p.Status {
	case period.StatusReviewing, period.StatusApproved:
		// The period is already under review; approving now would silently
		// invalidate the numbers the reviewer is looking at.
		return adjustment.AdjustmentResponse{}, fmt.Errorf("period %s is %s: %w", p.ID, p.Status, period.ErrInvalidPeriodState)
	case period.StatusCancelled:
		return adjustment.AdjustmentResponse{}, fmt.Errorf("period %s is cancelled: %w", p.ID, period.ErrInvalidPeriodState)
	}

	decided, err := s.repo.Decide(ctx, id, companyID, adjustment.StatusApproved, userID, nil)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	s.record(ctx, companyID, userID, decided, "adjustment_approved", nil)

	if p.Status == period.StatusCalculated {
		if _, err := s.engine.Run(ctx, a.PeriodID); err != nil && !errors.Is(err, calculation.ErrRunAlreadyInProgress) {
			return mapToResponse(decided), fmt.Errorf("adjustment approved but recalculation failed: %w", err)
		}
	}

	return mapToResponse(decided), nil
}

// Reject requires a non-empty reason.
func (s *AdjustmentServiceImpl) Reject(ctx context.Context, id string, req adjustment.RejectAdjustmentRequest) (adjustment.AdjustmentResponse, error) {
	if validator.IsEmpty(req.Reason) {
		return adjustment.AdjustmentResponse{}, adjustment.ErrRejectReasonRequired
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	a, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}
	if a.Terminal() {
		return adjustment.AdjustmentResponse{}, adjustment.ErrAlreadyDecided
	}

	decided, err := s.repo.Decide(ctx, id, companyID, adjustment.StatusRejected, userID, &req.Reason)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	s.record(ctx, companyID, userID, decided, "adjustment_rejected", map[string]any{"reject_reason": req.Reason})
	return mapToResponse(decided), nil
}

func (s *AdjustmentServiceImpl) ListByPeriod(ctx context.Context, periodID string, status *adjustment.ApprovalStatus) ([]adjustment.AdjustmentResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	adjustments, err := s.repo.ListByPeriod(ctx, periodID, companyID, status)
	if err != nil {
		return nil, err
	}

	result := make([]adjustment.AdjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		result = append(result, mapToResponse(a))
	}
	return result, nil
}

func (s *AdjustmentServiceImpl) record(ctx context.Context, companyID, userID string, a adjustment.Adjustment, action string, extra map[string]any) {
	newValues := map[string]any{
		"component_code": a.ComponentCode,
		"old_value":      a.OldValue.String(),
		"new_value":      a.NewValue.String(),
		"status":         string(a.ApprovalStatus),
	}
	for k, v := range extra {
		newValues[k] = v
	}
	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityAdjustment,
		EntityID:   a.ID,
		Action:     action,
		ActorID:    userID,
		NewValues:  newValues,
		Timestamp:  time.Now(),
	})
}

func mapToResponse(a adjustment.Adjustment) adjustment.AdjustmentResponse {
	return adjustment.AdjustmentResponse{
		ID:             a.ID,
		PeriodID:       a.PeriodID,
		EmployeeID:     a.EmployeeID,
		ComponentCode:  a.ComponentCode,
		OldValue:       a.OldValue,
		NewValue:       a.NewValue,
		Reason:         a.Reason,
		ApprovalStatus: string(a.ApprovalStatus),
		CreatedBy:      a.CreatedBy,
		ApprovedBy:     a.ApprovedBy,
		RejectReason:   a.RejectReason,
	}
}
