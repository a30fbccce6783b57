package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// PeriodServiceImpl owns every PayrollPeriod status transition. All writes
// go through the repository's compare-and-swap so concurrent transitions
// lose cleanly instead of clobbering each other.
type PeriodServiceImpl struct {
	repo  period.PeriodRepository
	trail audit.Trail
}

func NewPeriodService(repo period.PeriodRepository, trail audit.Trail) period.LifecycleService {
	return &PeriodServiceImpl{
		repo:  repo,
		trail: trail,
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

func (s *PeriodServiceImpl) Create(ctx context.Context, req period.CreatePeriodRequest) (period.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return period.PeriodResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)
	pay, _ := validator.IsValidDate(req.PayDate)

	p := period.PayrollPeriod{
		ID:              uuid.Must(uuid.NewV7()).String(),
		CompanyID:       companyID,
		PeriodType:      period.PeriodType(req.PeriodType),
		StartDate:       start,
		EndDate:         end,
		PayDate:         pay,
		Status:          period.StatusDraft,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityPeriod,
		EntityID:   created.ID,
		Action:     "period_created",
		ActorID:    userID,
		NewValues: map[string]any{
			"period_type": string(created.PeriodType),
			"start_date":  created.StartDate.Format("2006-01-02"),
			"end_date":    created.EndDate.Format("2006-01-02"),
			"pay_date":    created.PayDate.Format("2006-01-02"),
			"status":      string(created.Status),
		},
		Timestamp: time.Now(),
	})

	return mapToResponse(created), nil
}

func (s *PeriodServiceImpl) Get(ctx context.Context, id string) (period.PeriodResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	p, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return period.PeriodResponse{}, err
	}
	return mapToResponse(p), nil
}

func (s *PeriodServiceImpl) List(ctx context.Context, filter period.PeriodFilter) (period.ListPeriodResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.ListPeriodResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	periods, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return period.ListPeriodResponse{}, err
	}

	data := make([]period.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, mapToResponse(p))
	}

	return period.ListPeriodResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// MarkCalculating moves draft -> calculating. Called by the engine under the
// run lock; a period already calculating passes through unchanged so a
// re-calculation of a calculated period restarts from calculating.
func (s *PeriodServiceImpl) MarkCalculating(ctx context.Context, id string) (period.PayrollPeriod, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PayrollPeriod{}, err
	}

	p, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return period.PayrollPeriod{}, err
	}

	switch p.Status {
	case period.StatusCalculating:
		return p, nil
	case period.StatusDraft, period.StatusCalculated:
	default:
		s.recordRejected(ctx, companyID, userID, p, period.StatusCalculating)
		return period.PayrollPeriod{}, fmt.Errorf("period %s is %s: %w", id, p.Status, period.ErrInvalidPeriodState)
	}

	updated, err := s.repo.UpdateStatusCAS(ctx, id, companyID, p.Status, period.StatusCalculating, period.StatusUpdate{})
	if err != nil {
		return period.PayrollPeriod{}, err
	}

	s.recordTransition(ctx, companyID, userID, p.Status, updated)
	return updated, nil
}

// MarkCalculated closes a zero-failure run.
func (s *PeriodServiceImpl) MarkCalculated(ctx context.Context, id string) (period.PayrollPeriod, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PayrollPeriod{}, err
	}

	updated, err := s.repo.UpdateStatusCAS(ctx, id, companyID, period.StatusCalculating, period.StatusCalculated, period.StatusUpdate{})
	if err != nil {
		return period.PayrollPeriod{}, err
	}

	s.recordTransition(ctx, companyID, userID, period.StatusCalculating, updated)
	return updated, nil
}

// SubmitForReview moves calculated -> reviewing and records the preparer
// for the maker-checker rule on approval.
func (s *PeriodServiceImpl) SubmitForReview(ctx context.Context, id string) (period.PeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	p, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	if !period.CanTransition(p.Status, period.StatusReviewing) {
		s.recordRejected(ctx, companyID, userID, p, period.StatusReviewing)
		return period.PeriodResponse{}, fmt.Errorf("period %s is %s: %w", id, p.Status, period.ErrInvalidPeriodState)
	}
	if p.EmployeeCount == 0 {
		s.recordRejected(ctx, companyID, userID, p, period.StatusReviewing)
		return period.PeriodResponse{}, period.ErrNoEmployees
	}

	updated, err := s.repo.UpdateStatusCAS(ctx, id, companyID, p.Status, period.StatusReviewing, period.StatusUpdate{
		PreparedBy: &userID,
	})
	if err != nil {
		return period.PeriodResponse{}, err
	}

	s.recordTransition(ctx, companyID, userID, p.Status, updated)
	return mapToResponse(updated), nil
}

// Approve moves reviewing -> approved. The approver must not be the
// preparer who submitted the period for review.
func (s *PeriodServiceImpl) Approve(ctx context.Context, id string) (period.PeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	p, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	if !period.CanTransition(p.Status, period.StatusApproved) {
		s.recordRejected(ctx, companyID, userID, p, period.StatusApproved)
		return period.PeriodResponse{}, fmt.Errorf("period %s is %s: %w", id, p.Status, period.ErrInvalidPeriodState)
	}
	if p.PreparedBy != nil && *p.PreparedBy == userID {
		s.recordRejected(ctx, companyID, userID, p, period.StatusApproved)
		return period.PeriodResponse{}, period.ErrSelfApprovalNotAllowed
	}

	updated, err := s.repo.UpdateStatusCAS(ctx, id, companyID, p.Status, period.StatusApproved, period.StatusUpdate{
		ApprovedBy: &userID,
	})
	if err != nil {
		return period.PeriodResponse{}, err
	}

	s.recordTransition(ctx, companyID, userID, p.Status, updated)
	return mapToResponse(updated), nil
}

// Finalize locks the period permanently. Finalized is terminal: no further
// runs, adjustments or transitions are accepted.
func (s *PeriodServiceImpl) Finalize(ctx context.Context, id string) (period.PeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	p, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	if !period.CanTransition(p.Status, period.StatusFinalized) {
		s.recordRejected(ctx, companyID, userID, p, period.StatusFinalized)
		return period.PeriodResponse{}, fmt.Errorf("period %s is %s: %w", id, p.Status, period.ErrInvalidPeriodState)
	}

	updated, err := s.repo.UpdateStatusCAS(ctx, id, companyID, p.Status, period.StatusFinalized, period.StatusUpdate{
		SetLockedAt: true,
	})
	if err != nil {
		return period.PeriodResponse{}, err
	}

	s.recordTransition(ctx, companyID, userID, p.Status, updated)
	return mapToResponse(updated), nil
}

// Cancel abandons a period from any non-terminal state. A reason is
// mandatory and lands in the audit trail.
func (s *PeriodServiceImpl) Cancel(ctx context.Context, id string, req period.CancelPeriodRequest) (period.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return period.PeriodResponse{}, errors.Join(period.ErrCancelReasonRequired, err)
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	p, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return period.PeriodResponse{}, err
	}

	if !period.CanTransition(p.Status, period.StatusCancelled) {
		s.recordRejected(ctx, companyID, userID, p, period.StatusCancelled)
		if p.Status == period.StatusFinalized {
			return period.PeriodResponse{}, period.ErrPeriodLocked
		}
		return period.PeriodResponse{}, fmt.Errorf("period %s is %s: %w", id, p.Status, period.ErrInvalidPeriodState)
	}

	updated, err := s.repo.UpdateStatusCAS(ctx, id, companyID, p.Status, period.StatusCancelled, period.StatusUpdate{
		CancelReason: &req.Reason,
	})
	if err != nil {
		return period.PeriodResponse{}, err
	}

	s.recordTransition(ctx, companyID, userID, p.Status, updated)
	return mapToResponse(updated), nil
}

// recordTransition audits a successful status change.
func (s *PeriodServiceImpl) recordTransition(ctx context.Context, companyID, userID string, from period.Status, p period.PayrollPeriod) {
	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityPeriod,
		EntityID:   p.ID,
		Action:     "period_status_changed",
		ActorID:    userID,
		OldValues:  map[string]any{"status": string(from)},
		NewValues:  map[string]any{"status": string(p.Status)},
		Timestamp:  time.Now(),
	})
}

// recordRejected audits a refused transition attempt. Rejections are part
// of the forensic record.
func (s *PeriodServiceImpl) recordRejected(ctx context.Context, companyID, userID string, p period.PayrollPeriod, attempted period.Status) {
	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityPeriod,
		EntityID:   p.ID,
		Action:     "period_transition_rejected",
		ActorID:    userID,
		OldValues:  map[string]any{"status": string(p.Status)},
		NewValues:  map[string]any{"attempted_status": string(attempted)},
		Timestamp:  time.Now(),
	})
}

func mapToResponse(p period.PayrollPeriod) period.PeriodResponse {
	var lockedAt *string
	if p.LockedAt != nil {
		str := p.LockedAt.Format(time.RFC3339)
		lockedAt = &str
	}

	return period.PeriodResponse{
		ID:              p.ID,
		CompanyID:       p.CompanyID,
		PeriodType:      string(p.PeriodType),
		StartDate:       p.StartDate.Format("2006-01-02"),
		EndDate:         p.EndDate.Format("2006-01-02"),
		PayDate:         p.PayDate.Format("2006-01-02"),
		Status:          string(p.Status),
		EmployeeCount:   p.EmployeeCount,
		TotalGross:      p.TotalGross,
		TotalDeductions: p.TotalDeductions,
		TotalNet:        p.TotalNet,
		PreparedBy:      p.PreparedBy,
		ApprovedBy:      p.ApprovedBy,
		CancelReason:    p.CancelReason,
		LockedAt:        lockedAt,
	}
}
