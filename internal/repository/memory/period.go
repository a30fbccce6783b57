// Package memory provides in-process repository implementations. They back
// single-node deployments without Postgres and the service test suites.
// All stores are safe for concurrent use.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
)

type PeriodStore struct {
	mu      sync.RWMutex
	periods map[string]period.PayrollPeriod
}

func NewPeriodStore() *PeriodStore {
	return &PeriodStore{periods: make(map[string]period.PayrollPeriod)}
}

func (s *PeriodStore) Create(_ context.Context, p period.PayrollPeriod) (period.PayrollPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.periods {
		if existing.CompanyID != p.CompanyID || existing.Status == period.StatusCancelled {
			continue
		}
		if !p.StartDate.After(existing.EndDate) && !existing.StartDate.After(p.EndDate) {
			return period.PayrollPeriod{}, period.ErrPeriodOverlaps
		}
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.periods[p.ID] = p
	return p, nil
}

func (s *PeriodStore) GetByID(_ context.Context, id string, companyID string) (period.PayrollPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.periods[id]
	if !ok || p.CompanyID != companyID {
		return period.PayrollPeriod{}, period.ErrPeriodNotFound
	}
	return p, nil
}

func (s *PeriodStore) List(_ context.Context, companyID string, filter period.PeriodFilter) ([]period.PayrollPeriod, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []period.PayrollPeriod
	for _, p := range s.periods {
		if p.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Year != nil && p.StartDate.Year() != *filter.Year {
			continue
		}
		matched = append(matched, p)
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start < 0 || start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *PeriodStore) UpdateStatusCAS(_ context.Context, id string, companyID string, expected, next period.Status, update period.StatusUpdate) (period.PayrollPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[id]
	if !ok || p.CompanyID != companyID {
		return period.PayrollPeriod{}, period.ErrPeriodNotFound
	}
	if p.Status != expected {
		return period.PayrollPeriod{}, period.ErrTransitionConflict
	}

	p.Status = next
	if update.PreparedBy != nil {
		p.PreparedBy = update.PreparedBy
	}
	if update.ApprovedBy != nil {
		p.ApprovedBy = update.ApprovedBy
	}
	if update.CancelReason != nil {
		p.CancelReason = update.CancelReason
	}
	if update.SetLockedAt {
		now := time.Now()
		p.LockedAt = &now
	}
	p.UpdatedAt = time.Now()
	s.periods[id] = p
	return p, nil
}

func (s *PeriodStore) UpdateTotals(_ context.Context, id string, companyID string, totals period.Totals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[id]
	if !ok || p.CompanyID != companyID {
		return period.ErrPeriodNotFound
	}

	p.EmployeeCount = totals.EmployeeCount
	p.TotalGross = totals.Gross
	p.TotalDeductions = totals.Deductions
	p.TotalNet = totals.Net
	p.UpdatedAt = time.Now()
	s.periods[id] = p
	return nil
}
