package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
)

type RunStore struct {
	mu      sync.RWMutex
	runs    map[string]calculation.Run
	results map[string]calculation.EmployeeResult
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs:    make(map[string]calculation.Run),
		results: make(map[string]calculation.EmployeeResult),
	}
}

func (s *RunStore) NextRunNumber(_ context.Context, periodID string, companyID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for _, r := range s.runs {
		if r.PeriodID == periodID && r.CompanyID == companyID && r.RunNumber > max {
			max = r.RunNumber
		}
	}
	return max + 1, nil
}

func (s *RunStore) CreateRun(_ context.Context, run calculation.Run) (calculation.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return run, nil
}

func (s *RunStore) CompleteRun(_ context.Context, runID string, companyID string, status calculation.RunStatus, total, succeeded, failed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok || run.CompanyID != companyID {
		return calculation.ErrRunNotFound
	}

	now := time.Now()
	run.Status = status
	run.Total = total
	run.Succeeded = succeeded
	run.Failed = failed
	run.CompletedAt = &now
	s.runs[runID] = run
	return nil
}

func (s *RunStore) CreateResult(_ context.Context, result calculation.EmployeeResult) (calculation.EmployeeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = result
	return result, nil
}

func (s *RunStore) GetRunByID(_ context.Context, runID string, companyID string) (calculation.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok || run.CompanyID != companyID {
		return calculation.Run{}, calculation.ErrRunNotFound
	}
	return run, nil
}

func (s *RunStore) ListRuns(_ context.Context, periodID string, companyID string) ([]calculation.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []calculation.Run
	for _, r := range s.runs {
		if r.PeriodID == periodID && r.CompanyID == companyID {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].RunNumber > runs[j].RunNumber })
	return runs, nil
}

func (s *RunStore) LatestSuccessfulResults(_ context.Context, periodID string, companyID string) ([]calculation.EmployeeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Highest run number with a success result wins per employee.
	latest := make(map[string]calculation.EmployeeResult)
	latestRun := make(map[string]int)
	for _, res := range s.results {
		if res.Status != calculation.ResultStatusSuccess {
			continue
		}
		run, ok := s.runs[res.RunID]
		if !ok || run.PeriodID != periodID || run.CompanyID != companyID {
			continue
		}
		if prev, ok := latestRun[res.EmployeeID]; !ok || run.RunNumber > prev {
			latest[res.EmployeeID] = res
			latestRun[res.EmployeeID] = run.RunNumber
		}
	}

	results := make([]calculation.EmployeeResult, 0, len(latest))
	for _, res := range latest {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].EmployeeID < results[j].EmployeeID })
	return results, nil
}

func (s *RunStore) ListResults(_ context.Context, runID string, companyID string) ([]calculation.EmployeeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok || run.CompanyID != companyID {
		return nil, calculation.ErrRunNotFound
	}

	var results []calculation.EmployeeResult
	for _, res := range s.results {
		if res.RunID == runID {
			results = append(results, res)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].EmployeeID < results[j].EmployeeID })
	return results, nil
}

func (s *RunStore) GetEmployeeResult(_ context.Context, runID, employeeID, companyID string) (calculation.EmployeeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok || run.CompanyID != companyID {
		return calculation.EmployeeResult{}, calculation.ErrRunNotFound
	}

	for _, res := range s.results {
		if res.RunID == runID && res.EmployeeID == employeeID {
			return res, nil
		}
	}
	return calculation.EmployeeResult{}, calculation.ErrResultNotFound
}
