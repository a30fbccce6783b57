package calculation

import "context"

// RunRepository persists calculation runs and per-employee results.
// Runs and results are append-only: there are no update methods besides
// CompleteRun, which closes the run it created.
type RunRepository interface {
	// NextRunNumber returns max(run_number)+1 for the period, starting at 1.
	NextRunNumber(ctx context.Context, periodID string, companyID string) (int, error)

	CreateRun(ctx context.Context, run Run) (Run, error)
	CompleteRun(ctx context.Context, runID string, companyID string, status RunStatus, total, succeeded, failed int) error

	CreateResult(ctx context.Context, result EmployeeResult) (EmployeeResult, error)

	GetRunByID(ctx context.Context, runID string, companyID string) (Run, error)
	ListRuns(ctx context.Context, periodID string, companyID string) ([]Run, error)

	// LatestSuccessfulResults returns, per employee, the result from the most
	// recent run in which that employee succeeded.
	LatestSuccessfulResults(ctx context.Context, periodID string, companyID string) ([]EmployeeResult, error)
	ListResults(ctx context.Context, runID string, companyID string) ([]EmployeeResult, error)
	GetEmployeeResult(ctx context.Context, runID, employeeID, companyID string) (EmployeeResult, error)
}
