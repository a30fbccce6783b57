package postgresql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type periodRepository struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) period.PeriodRepository {
	return &periodRepository{db: db}
}

const periodColumns = `
	id, company_id, period_type, start_date, end_date, pay_date, status,
	employee_count, total_gross, total_deductions, total_net,
	prepared_by, approved_by, cancel_reason, locked_at, created_at, updated_at
`

func scanPeriod(row pgx.Row) (period.PayrollPeriod, error) {
	var p period.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.PeriodType, &p.StartDate, &p.EndDate, &p.PayDate, &p.Status,
		&p.EmployeeCount, &p.TotalGross, &p.TotalDeductions, &p.TotalNet,
		&p.PreparedBy, &p.ApprovedBy, &p.CancelReason, &p.LockedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create implements period.PeriodRepository. The insert is guarded against
// overlapping non-cancelled periods for the same company, atomically with
// the write.
func (r *periodRepository) Create(ctx context.Context, p period.PayrollPeriod) (period.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (
			id, company_id, period_type, start_date, end_date, pay_date, status,
			total_gross, total_deductions, total_net
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		WHERE NOT EXISTS (
			SELECT 1 FROM payroll_periods
			WHERE company_id = $2
			  AND status <> 'cancelled'
			  AND start_date <= $5
			  AND end_date >= $4
		)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.ID, p.CompanyID, p.PeriodType, p.StartDate, p.EndDate, p.PayDate, p.Status,
		p.TotalGross, p.TotalDeductions, p.TotalNet,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return period.PayrollPeriod{}, period.ErrPeriodOverlaps
		}
		return period.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return p, nil
}

// GetByID implements period.PeriodRepository.
func (r *periodRepository) GetByID(ctx context.Context, id string, companyID string) (period.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1 AND company_id = $2`

	p, err := scanPeriod(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return period.PayrollPeriod{}, period.ErrPeriodNotFound
		}
		return period.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

// List implements period.PeriodRepository.
func (r *periodRepository) List(ctx context.Context, companyID string, filter period.PeriodFilter) ([]period.PayrollPeriod, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE company_id = $1"
	args := []interface{}{companyID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where += " AND EXTRACT(YEAR FROM start_date) = $" + strconv.Itoa(len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM payroll_periods " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := "SELECT " + periodColumns + " FROM payroll_periods " + where +
		" ORDER BY start_date DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []period.PayrollPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}

	return periods, total, rows.Err()
}

// UpdateStatusCAS implements period.PeriodRepository. The WHERE clause on
// the stored status is the compare-and-swap: zero rows updated means the
// status moved underneath the caller.
func (r *periodRepository) UpdateStatusCAS(ctx context.Context, id string, companyID string, expected, next period.Status, update period.StatusUpdate) (period.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET status = $1,
			prepared_by = COALESCE($2, prepared_by),
			approved_by = COALESCE($3, approved_by),
			cancel_reason = COALESCE($4, cancel_reason),
			locked_at = CASE WHEN $5 THEN NOW() ELSE locked_at END,
			updated_at = NOW()
		WHERE id = $6 AND company_id = $7 AND status = $8
		RETURNING ` + periodColumns

	p, err := scanPeriod(q.QueryRow(ctx, query,
		next, update.PreparedBy, update.ApprovedBy, update.CancelReason, update.SetLockedAt,
		id, companyID, expected,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			// Distinguish a lost race from a missing row.
			if _, getErr := r.GetByID(ctx, id, companyID); getErr != nil {
				return period.PayrollPeriod{}, getErr
			}
			return period.PayrollPeriod{}, period.ErrTransitionConflict
		}
		return period.PayrollPeriod{}, fmt.Errorf("failed to update period status: %w", err)
	}

	return p, nil
}

// UpdateTotals implements period.PeriodRepository.
func (r *periodRepository) UpdateTotals(ctx context.Context, id string, companyID string, totals period.Totals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET employee_count = $1, total_gross = $2, total_deductions = $3, total_net = $4, updated_at = NOW()
		WHERE id = $5 AND company_id = $6
	`

	tag, err := q.Exec(ctx, query, totals.EmployeeCount, totals.Gross, totals.Deductions, totals.Net, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to update period totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return period.ErrPeriodNotFound
	}

	return nil
}
