package calculation

import "context"

// EngineService runs the payroll calculation for a period. Exactly one run
// may be active per period; every employee is computed independently and a
// single failing employee never aborts the run.
type EngineService interface {
	Run(ctx context.Context, periodID string) (Summary, error)

	GetRun(ctx context.Context, runID string) (RunResponse, error)
	ListRuns(ctx context.Context, periodID string) ([]RunResponse, error)
	ListResults(ctx context.Context, runID string) ([]ResultResponse, error)

	// Payslips exposes the latest successful result per employee to payslip
	// and bank-file renderers. Read-only.
	Payslips(ctx context.Context, periodID string) ([]PayslipView, error)
}
