package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type runRepository struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) calculation.RunRepository {
	return &runRepository{db: db}
}

const runColumns = `
	id, period_id, company_id, run_number, status, total, succeeded, failed,
	triggered_by, started_at, completed_at
`

func scanRun(row pgx.Row) (calculation.Run, error) {
	var r calculation.Run
	err := row.Scan(
		&r.ID, &r.PeriodID, &r.CompanyID, &r.RunNumber, &r.Status, &r.Total, &r.Succeeded, &r.Failed,
		&r.TriggeredBy, &r.StartedAt, &r.CompletedAt,
	)
	return r, err
}

// NextRunNumber implements calculation.RunRepository.
func (r *runRepository) NextRunNumber(ctx context.Context, periodID string, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(MAX(run_number), 0) + 1
		FROM calculation_runs
		WHERE period_id = $1 AND company_id = $2
	`

	var next int
	if err := q.QueryRow(ctx, query, periodID, companyID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next run number: %w", err)
	}

	return next, nil
}

// CreateRun implements calculation.RunRepository.
func (r *runRepository) CreateRun(ctx context.Context, run calculation.Run) (calculation.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO calculation_runs (
			id, period_id, company_id, run_number, status, total, succeeded, failed, triggered_by, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		run.ID, run.PeriodID, run.CompanyID, run.RunNumber, run.Status,
		run.Total, run.Succeeded, run.Failed, run.TriggeredBy, run.StartedAt,
	)
	if err != nil {
		return calculation.Run{}, fmt.Errorf("failed to create calculation run: %w", err)
	}

	return run, nil
}

// CompleteRun implements calculation.RunRepository.
func (r *runRepository) CompleteRun(ctx context.Context, runID string, companyID string, status calculation.RunStatus, total, succeeded, failed int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE calculation_runs
		SET status = $1, total = $2, succeeded = $3, failed = $4, completed_at = NOW()
		WHERE id = $5 AND company_id = $6
	`

	tag, err := q.Exec(ctx, query, status, total, succeeded, failed, runID, companyID)
	if err != nil {
		return fmt.Errorf("failed to complete calculation run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calculation.ErrRunNotFound
	}

	return nil
}

// CreateResult implements calculation.RunRepository. Results are insert-only.
func (r *runRepository) CreateResult(ctx context.Context, result calculation.EmployeeResult) (calculation.EmployeeResult, error) {
	q := GetQuerier(ctx, r.db)

	lineItems, err := json.Marshal(result.LineItems)
	if err != nil {
		return calculation.EmployeeResult{}, fmt.Errorf("failed to marshal line items: %w", err)
	}

	query := `
		INSERT INTO calculation_results (
			id, run_id, employee_id, line_items, gross_pay, total_deductions, net_pay,
			status, error_reason, warnings, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = q.Exec(ctx, query,
		result.ID, result.RunID, result.EmployeeID, lineItems,
		result.GrossPay, result.TotalDeductions, result.NetPay,
		result.Status, result.ErrorReason, result.Warnings, result.CreatedAt,
	)
	if err != nil {
		return calculation.EmployeeResult{}, fmt.Errorf("failed to create calculation result: %w", err)
	}

	return result, nil
}

// GetRunByID implements calculation.RunRepository.
func (r *runRepository) GetRunByID(ctx context.Context, runID string, companyID string) (calculation.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM calculation_runs WHERE id = $1 AND company_id = $2`

	run, err := scanRun(q.QueryRow(ctx, query, runID, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return calculation.Run{}, calculation.ErrRunNotFound
		}
		return calculation.Run{}, fmt.Errorf("failed to get calculation run: %w", err)
	}

	return run, nil
}

// ListRuns implements calculation.RunRepository.
func (r *runRepository) ListRuns(ctx context.Context, periodID string, companyID string) ([]calculation.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM calculation_runs WHERE period_id = $1 AND company_id = $2 ORDER BY run_number DESC`

	rows, err := q.Query(ctx, query, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculation runs: %w", err)
	}
	defer rows.Close()

	var runs []calculation.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

const resultColumns = `
	res.id, res.run_id, res.employee_id, res.line_items, res.gross_pay,
	res.total_deductions, res.net_pay, res.status, res.error_reason, res.warnings, res.created_at
`

func scanResult(row pgx.Row) (calculation.EmployeeResult, error) {
	var res calculation.EmployeeResult
	var lineItems []byte
	err := row.Scan(
		&res.ID, &res.RunID, &res.EmployeeID, &lineItems, &res.GrossPay,
		&res.TotalDeductions, &res.NetPay, &res.Status, &res.ErrorReason, &res.Warnings, &res.CreatedAt,
	)
	if err != nil {
		return calculation.EmployeeResult{}, err
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &res.LineItems); err != nil {
			return calculation.EmployeeResult{}, fmt.Errorf("failed to unmarshal line items: %w", err)
		}
	}
	return res, nil
}

// LatestSuccessfulResults implements calculation.RunRepository. For each
// employee the row from the highest run number with a success status wins.
func (r *runRepository) LatestSuccessfulResults(ctx context.Context, periodID string, companyID string) ([]calculation.EmployeeResult, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ON (res.employee_id) ` + resultColumns + `
		FROM calculation_results res
		JOIN calculation_runs run ON run.id = res.run_id
		WHERE run.period_id = $1
		  AND run.company_id = $2
		  AND res.status = 'success'
		ORDER BY res.employee_id, run.run_number DESC
	`

	rows, err := q.Query(ctx, query, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest successful results: %w", err)
	}
	defer rows.Close()

	var results []calculation.EmployeeResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation result: %w", err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

// ListResults implements calculation.RunRepository.
func (r *runRepository) ListResults(ctx context.Context, runID string, companyID string) ([]calculation.EmployeeResult, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + resultColumns + `
		FROM calculation_results res
		JOIN calculation_runs run ON run.id = res.run_id
		WHERE res.run_id = $1 AND run.company_id = $2
		ORDER BY res.employee_id
	`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculation results: %w", err)
	}
	defer rows.Close()

	var results []calculation.EmployeeResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation result: %w", err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

// GetEmployeeResult implements calculation.RunRepository.
func (r *runRepository) GetEmployeeResult(ctx context.Context, runID, employeeID, companyID string) (calculation.EmployeeResult, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + resultColumns + `
		FROM calculation_results res
		JOIN calculation_runs run ON run.id = res.run_id
		WHERE res.run_id = $1 AND res.employee_id = $2 AND run.company_id = $3
	`

	res, err := scanResult(q.QueryRow(ctx, query, runID, employeeID, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return calculation.EmployeeResult{}, calculation.ErrResultNotFound
		}
		return calculation.EmployeeResult{}, fmt.Errorf("failed to get calculation result: %w", err)
	}

	return res, nil
}
