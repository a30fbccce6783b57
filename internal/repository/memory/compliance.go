package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/compliance"
)

type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]compliance.Report
}

func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]compliance.Report)}
}

func (s *ReportStore) Upsert(_ context.Context, r compliance.Report) (compliance.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.reports {
		if existing.PeriodID != r.PeriodID || existing.Agency != r.Agency || existing.CompanyID != r.CompanyID {
			continue
		}
		if !existing.Mutable() {
			return compliance.Report{}, compliance.ErrReportAlreadySubmitted
		}
		delete(s.reports, id)
	}

	s.reports[r.ID] = r
	return r, nil
}

func (s *ReportStore) GetByID(_ context.Context, id string, companyID string) (compliance.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok || r.CompanyID != companyID {
		return compliance.Report{}, compliance.ErrReportNotFound
	}
	return r, nil
}

func (s *ReportStore) GetByPeriodAgency(_ context.Context, periodID, agency, companyID string) (compliance.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.PeriodID == periodID && r.Agency == agency && r.CompanyID == companyID {
			return r, nil
		}
	}
	return compliance.Report{}, compliance.ErrReportNotFound
}

func (s *ReportStore) ListByPeriod(_ context.Context, periodID string, companyID string) ([]compliance.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reports []compliance.Report
	for _, r := range s.reports {
		if r.PeriodID == periodID && r.CompanyID == companyID {
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Agency < reports[j].Agency })
	return reports, nil
}

func (s *ReportStore) UpdateStatus(_ context.Context, id string, companyID string, status compliance.Status) (compliance.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok || r.CompanyID != companyID {
		return compliance.Report{}, compliance.ErrReportNotFound
	}

	r.Status = status
	if status == compliance.StatusSubmitted {
		now := time.Now()
		r.SubmissionDate = &now
	}
	s.reports[id] = r
	return r, nil
}
