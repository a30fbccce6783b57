package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
)

type AdjustmentStore struct {
	mu          sync.RWMutex
	adjustments map[string]adjustment.Adjustment
}

func NewAdjustmentStore() *AdjustmentStore {
	return &AdjustmentStore{adjustments: make(map[string]adjustment.Adjustment)}
}

func (s *AdjustmentStore) Create(_ context.Context, a adjustment.Adjustment) (adjustment.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjustments[a.ID] = a
	return a, nil
}

func (s *AdjustmentStore) GetByID(_ context.Context, id string, companyID string) (adjustment.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.adjustments[id]
	if !ok || a.CompanyID != companyID {
		return adjustment.Adjustment{}, adjustment.ErrAdjustmentNotFound
	}
	return a, nil
}

func (s *AdjustmentStore) ListByPeriod(_ context.Context, periodID string, companyID string, status *adjustment.ApprovalStatus) ([]adjustment.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var adjustments []adjustment.Adjustment
	for _, a := range s.adjustments {
		if a.PeriodID != periodID || a.CompanyID != companyID {
			continue
		}
		if status != nil && a.ApprovalStatus != *status {
			continue
		}
		adjustments = append(adjustments, a)
	}
	sort.Slice(adjustments, func(i, j int) bool { return adjustments[i].CreatedAt.After(adjustments[j].CreatedAt) })
	return adjustments, nil
}

func (s *AdjustmentStore) Decide(_ context.Context, id string, companyID string, status adjustment.ApprovalStatus, approverID string, rejectReason *string) (adjustment.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.adjustments[id]
	if !ok || a.CompanyID != companyID {
		return adjustment.Adjustment{}, adjustment.ErrAdjustmentNotFound
	}
	if a.Terminal() {
		return adjustment.Adjustment{}, adjustment.ErrAlreadyDecided
	}

	now := time.Now()
	a.ApprovalStatus = status
	a.ApprovedBy = &approverID
	a.RejectReason = rejectReason
	a.DecidedAt = &now
	s.adjustments[id] = a
	return a, nil
}

func (s *AdjustmentStore) ApprovedForPeriod(ctx context.Context, periodID string, companyID string) ([]adjustment.Adjustment, error) {
	approved := adjustment.StatusApproved
	adjustments, err := s.ListByPeriod(ctx, periodID, companyID, &approved)
	if err != nil {
		return nil, err
	}
	// Oldest first so a later approval overwrites an earlier one when merged.
	sort.Slice(adjustments, func(i, j int) bool {
		return adjustments[i].DecidedAt.Before(*adjustments[j].DecidedAt)
	})
	return adjustments, nil
}
