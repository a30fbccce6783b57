package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type adjustmentRepository struct {
	db *database.DB
}

func NewAdjustmentRepository(db *database.DB) adjustment.AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

const adjustmentColumns = `
	id, period_id, company_id, employee_id, component_code, old_value, new_value,
	reason, approval_status, created_by, approved_by, reject_reason, created_at, decided_at
`

func scanAdjustment(row pgx.Row) (adjustment.Adjustment, error) {
	var a adjustment.Adjustment
	err := row.Scan(
		&a.ID, &a.PeriodID, &a.CompanyID, &a.EmployeeID, &a.ComponentCode, &a.OldValue, &a.NewValue,
		&a.Reason, &a.ApprovalStatus, &a.CreatedBy, &a.ApprovedBy, &a.RejectReason, &a.CreatedAt, &a.DecidedAt,
	)
	return a, err
}

// Create implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) Create(ctx context.Context, a adjustment.Adjustment) (adjustment.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO adjustments (
			id, period_id, company_id, employee_id, component_code, old_value, new_value,
			reason, approval_status, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.Exec(ctx, query,
		a.ID, a.PeriodID, a.CompanyID, a.EmployeeID, a.ComponentCode, a.OldValue, a.NewValue,
		a.Reason, a.ApprovalStatus, a.CreatedBy, a.CreatedAt,
	)
	if err != nil {
		return adjustment.Adjustment{}, fmt.Errorf("failed to create adjustment: %w", err)
	}

	return a, nil
}

// GetByID implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) GetByID(ctx context.Context, id string, companyID string) (adjustment.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + adjustmentColumns + ` FROM adjustments WHERE id = $1 AND company_id = $2`

	a, err := scanAdjustment(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return adjustment.Adjustment{}, adjustment.ErrAdjustmentNotFound
		}
		return adjustment.Adjustment{}, fmt.Errorf("failed to get adjustment: %w", err)
	}

	return a, nil
}

// ListByPeriod implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) ListByPeriod(ctx context.Context, periodID string, companyID string, status *adjustment.ApprovalStatus) ([]adjustment.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + adjustmentColumns + ` FROM adjustments WHERE period_id = $1 AND company_id = $2`
	args := []interface{}{periodID, companyID}
	if status != nil {
		query += ` AND approval_status = $3`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []adjustment.Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}

	return adjustments, rows.Err()
}

// Decide implements adjustment.AdjustmentRepository. The WHERE clause on
// the pending status makes a double decision lose instead of overwriting.
func (r *adjustmentRepository) Decide(ctx context.Context, id string, companyID string, status adjustment.ApprovalStatus, approverID string, rejectReason *string) (adjustment.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE adjustments
		SET approval_status = $1, approved_by = $2, reject_reason = $3, decided_at = NOW()
		WHERE id = $4 AND company_id = $5 AND approval_status = 'pending'
		RETURNING ` + adjustmentColumns

	a, err := scanAdjustment(q.QueryRow(ctx, query, status, approverID, rejectReason, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, id, companyID); getErr != nil {
				return adjustment.Adjustment{}, getErr
			}
			return adjustment.Adjustment{}, adjustment.ErrAlreadyDecided
		}
		return adjustment.Adjustment{}, fmt.Errorf("failed to decide adjustment: %w", err)
	}

	return a, nil
}

// ApprovedForPeriod implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) ApprovedForPeriod(ctx context.Context, periodID string, companyID string) ([]adjustment.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + adjustmentColumns + `
		FROM adjustments
		WHERE period_id = $1 AND company_id = $2 AND approval_status = 'approved'
		ORDER BY decided_at
	`

	rows, err := q.Query(ctx, query, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []adjustment.Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}

	return adjustments, rows.Err()
}
