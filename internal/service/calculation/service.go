// Package calculation implements the payroll engine: one run per
// invocation, a bounded worker pool over the employee roster, and a
// completion barrier before the run is closed and the period advanced.
package calculation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/domain/identity"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/locker"
	"github.com/payrollhq/payroll-engine-go/internal/service/resolver"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type EngineServiceImpl struct {
	runRepo        calculation.RunRepository
	periodRepo     period.PeriodRepository
	adjustmentRepo adjustment.AdjustmentRepository
	lifecycle      period.LifecycleService
	resolver       *resolver.Resolver
	identity       identity.Provider
	locker         locker.RunLocker
	trail          audit.Trail
	workers        int
}

func NewEngineService(
	runRepo calculation.RunRepository,
	periodRepo period.PeriodRepository,
	adjustmentRepo adjustment.AdjustmentRepository,
	lifecycle period.LifecycleService,
	componentResolver *resolver.Resolver,
	identityProvider identity.Provider,
	runLocker locker.RunLocker,
	trail audit.Trail,
	workers int,
) calculation.EngineService {
	if workers < 1 {
		workers = 1
	}
	return &EngineServiceImpl{
		runRepo:        runRepo,
		periodRepo:     periodRepo,
		adjustmentRepo: adjustmentRepo,
		lifecycle:      lifecycle,
		resolver:       componentResolver,
		identity:       identityProvider,
		locker:         runLocker,
		trail:          trail,
		workers:        workers,
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

// Run executes one calculation attempt for the period. A single failing
// employee is recorded and the run continues; only context cancellation
// stops the pool early.
func (s *EngineServiceImpl) Run(ctx context.Context, periodID string) (calculation.Summary, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return calculation.Summary{}, err
	}

	p, err := s.periodRepo.GetByID(ctx, periodID, companyID)
	if err != nil {
		return calculation.Summary{}, err
	}
	switch p.Status {
	case period.StatusDraft, period.StatusCalculating, period.StatusCalculated:
	default:
		return calculation.Summary{}, fmt.Errorf("period %s is %s: %w", periodID, p.Status, period.ErrInvalidPeriodState)
	}

	release, acquired, err := s.locker.TryAcquire(ctx, periodID)
	if err != nil {
		return calculation.Summary{}, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return calculation.Summary{}, calculation.ErrRunAlreadyInProgress
	}
	defer release()

	if _, err := s.lifecycle.MarkCalculating(ctx, periodID); err != nil {
		return calculation.Summary{}, err
	}

	employees, err := s.identity.ActiveEmployees(ctx, companyID)
	if err != nil {
		return calculation.Summary{}, fmt.Errorf("failed to load employee roster: %w", err)
	}

	runNumber, err := s.runRepo.NextRunNumber(ctx, periodID, companyID)
	if err != nil {
		return calculation.Summary{}, err
	}

	run, err := s.runRepo.CreateRun(ctx, calculation.Run{
		ID:          uuid.Must(uuid.NewV7()).String(),
		PeriodID:    periodID,
		CompanyID:   companyID,
		RunNumber:   runNumber,
		Status:      calculation.RunStatusPending,
		Total:       len(employees),
		TriggeredBy: userID,
		StartedAt:   time.Now(),
	})
	if err != nil {
		return calculation.Summary{}, err
	}

	overrides, err := s.approvedOverrides(ctx, periodID, companyID)
	if err != nil {
		return calculation.Summary{}, err
	}

	var (
		mu        sync.Mutex
		succeeded int
		failed    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, emp := range employees {
		emp := emp
		// Cooperative cancellation: stop scheduling once the context dies.
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			result := s.computeEmployee(gctx, run, p, emp, overrides[emp.ID])
			if _, err := s.runRepo.CreateResult(gctx, result); err != nil {
				return fmt.Errorf("failed to persist result for employee %s: %w", emp.ID, err)
			}
			mu.Lock()
			if result.Status == calculation.ResultStatusSuccess {
				succeeded++
			} else {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}

	// Barrier: the run closes only after every scheduled worker finished.
	if err := g.Wait(); err != nil {
		_ = s.runRepo.CompleteRun(ctx, run.ID, companyID, calculation.RunStatusError, run.Total, succeeded, failed)
		return calculation.Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		_ = s.runRepo.CompleteRun(ctx, run.ID, companyID, calculation.RunStatusError, run.Total, succeeded, failed)
		return calculation.Summary{}, fmt.Errorf("%w: %v", calculation.ErrRunCancelled, err)
	}

	runStatus := calculation.RunStatusSuccess
	if failed > 0 {
		runStatus = calculation.RunStatusPartial
	}
	if err := s.runRepo.CompleteRun(ctx, run.ID, companyID, runStatus, run.Total, succeeded, failed); err != nil {
		return calculation.Summary{}, err
	}

	// The period advances only on a clean run; partial runs leave it in
	// calculating so the failures can be fixed and the run repeated.
	if failed == 0 {
		if err := s.finishPeriod(ctx, periodID, companyID); err != nil {
			return calculation.Summary{}, err
		}
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityRun,
		EntityID:   run.ID,
		Action:     "calculation_run_completed",
		ActorID:    userID,
		NewValues: map[string]any{
			"period_id":  periodID,
			"run_number": runNumber,
			"status":     string(runStatus),
			"total":      run.Total,
			"succeeded":  succeeded,
			"failed":     failed,
		},
		Timestamp: time.Now(),
	})

	return calculation.Summary{
		RunID:     run.ID,
		RunNumber: runNumber,
		Total:     run.Total,
		Succeeded: succeeded,
		Failed:    failed,
	}, nil
}

// computeEmployee resolves one employee's components and folds them into a
// result row. Resolution errors become an error-status result, never a run
// abort.
func (s *EngineServiceImpl) computeEmployee(
	ctx context.Context,
	run calculation.Run,
	p period.PayrollPeriod,
	emp identity.Employee,
	overrides map[string]decimal.Decimal,
) calculation.EmployeeResult {
	result := calculation.EmployeeResult{
		ID:         uuid.Must(uuid.NewV7()).String(),
		RunID:      run.ID,
		EmployeeID: emp.ID,
		CreatedAt:  time.Now(),
	}

	components, warnings, err := s.resolver.Resolve(ctx, run.CompanyID, emp.ID, p, overrides)
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	if err != nil {
		reason := err.Error()
		result.Status = calculation.ResultStatusError
		result.ErrorReason = &reason
		result.GrossPay = decimal.Zero
		result.TotalDeductions = decimal.Zero
		result.NetPay = decimal.Zero
		return result
	}

	gross := decimal.Zero
	deductions := decimal.Zero
	for _, rc := range components {
		result.LineItems = append(result.LineItems, calculation.LineItem{
			ComponentCode: rc.Code,
			ComponentType: string(rc.Type),
			Agency:        rc.Agency,
			Amount:        rc.Amount,
			EmployerShare: rc.EmployerShare,
			Basis:         rc.Basis,
			Taxable:       rc.IsTaxable && !rc.IsDeMinimis,
		})
		if rc.Type.Pays() {
			gross = gross.Add(rc.Amount)
		} else {
			deductions = deductions.Add(rc.Amount)
		}
	}

	result.GrossPay = gross
	result.TotalDeductions = deductions
	result.NetPay = gross.Sub(deductions)
	result.Status = calculation.ResultStatusSuccess
	return result
}

// approvedOverrides loads approved adjustments keyed by employee and
// component code. Later approvals win over earlier ones for the same key.
func (s *EngineServiceImpl) approvedOverrides(ctx context.Context, periodID, companyID string) (map[string]map[string]decimal.Decimal, error) {
	approved, err := s.adjustmentRepo.ApprovedForPeriod(ctx, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved adjustments: %w", err)
	}

	overrides := make(map[string]map[string]decimal.Decimal)
	for _, a := range approved {
		byCode, ok := overrides[a.EmployeeID]
		if !ok {
			byCode = make(map[string]decimal.Decimal)
			overrides[a.EmployeeID] = byCode
		}
		byCode[a.ComponentCode] = a.NewValue
	}
	return overrides, nil
}

// finishPeriod advances the period to calculated and stamps the run totals.
func (s *EngineServiceImpl) finishPeriod(ctx context.Context, periodID, companyID string) error {
	if _, err := s.lifecycle.MarkCalculated(ctx, periodID); err != nil {
		return err
	}

	results, err := s.runRepo.LatestSuccessfulResults(ctx, periodID, companyID)
	if err != nil {
		return err
	}

	totals := period.Totals{
		EmployeeCount: len(results),
		Gross:         decimal.Zero,
		Deductions:    decimal.Zero,
		Net:           decimal.Zero,
	}
	for _, r := range results {
		totals.Gross = totals.Gross.Add(r.GrossPay)
		totals.Deductions = totals.Deductions.Add(r.TotalDeductions)
		totals.Net = totals.Net.Add(r.NetPay)
	}

	return s.periodRepo.UpdateTotals(ctx, periodID, companyID, totals)
}

func (s *EngineServiceImpl) GetRun(ctx context.Context, runID string) (calculation.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return calculation.RunResponse{}, err
	}

	run, err := s.runRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return calculation.RunResponse{}, err
	}
	return mapRunToResponse(run), nil
}

func (s *EngineServiceImpl) ListRuns(ctx context.Context, periodID string) ([]calculation.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	runs, err := s.runRepo.ListRuns(ctx, periodID, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]calculation.RunResponse, 0, len(runs))
	for _, r := range runs {
		result = append(result, mapRunToResponse(r))
	}
	return result, nil
}

func (s *EngineServiceImpl) ListResults(ctx context.Context, runID string) ([]calculation.ResultResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.runRepo.ListResults(ctx, runID, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]calculation.ResultResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, calculation.ResultResponse{
			ID:              r.ID,
			RunID:           r.RunID,
			EmployeeID:      r.EmployeeID,
			LineItems:       r.LineItems,
			GrossPay:        r.GrossPay,
			TotalDeductions: r.TotalDeductions,
			NetPay:          r.NetPay,
			Status:          string(r.Status),
			ErrorReason:     r.ErrorReason,
			Warnings:        r.Warnings,
		})
	}
	return responses, nil
}

// Payslips projects the latest successful result per employee.
func (s *EngineServiceImpl) Payslips(ctx context.Context, periodID string) ([]calculation.PayslipView, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.runRepo.LatestSuccessfulResults(ctx, periodID, companyID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, calculation.ErrNoSuccessfulRun
	}

	runNumbers := make(map[string]int)
	payslips := make([]calculation.PayslipView, 0, len(results))
	for _, r := range results {
		runNumber, ok := runNumbers[r.RunID]
		if !ok {
			run, err := s.runRepo.GetRunByID(ctx, r.RunID, companyID)
			if err != nil {
				return nil, err
			}
			runNumber = run.RunNumber
			runNumbers[r.RunID] = runNumber
		}
		payslips = append(payslips, calculation.PayslipView{
			EmployeeID:      r.EmployeeID,
			PeriodID:        periodID,
			RunNumber:       runNumber,
			LineItems:       r.LineItems,
			GrossPay:        r.GrossPay,
			TotalDeductions: r.TotalDeductions,
			NetPay:          r.NetPay,
		})
	}
	return payslips, nil
}

func mapRunToResponse(r calculation.Run) calculation.RunResponse {
	return calculation.RunResponse{
		ID:          r.ID,
		PeriodID:    r.PeriodID,
		RunNumber:   r.RunNumber,
		Status:      string(r.Status),
		Total:       r.Total,
		Succeeded:   r.Succeeded,
		Failed:      r.Failed,
		TriggeredBy: r.TriggeredBy,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}
