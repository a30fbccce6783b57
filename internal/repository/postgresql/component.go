package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type componentRepository struct {
	db *database.DB
}

func NewComponentRepository(db *database.DB) component.ComponentRepository {
	return &componentRepository{db: db}
}

const componentColumns = `
	id, company_id, code, name, type, is_taxable, is_deminimis,
	basis_code, agency, rate_table_key, default_amount, is_active,
	created_at, updated_at
`

func scanComponent(row pgx.Row) (component.SalaryComponent, error) {
	var c component.SalaryComponent
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Code, &c.Name, &c.Type, &c.IsTaxable, &c.IsDeMinimis,
		&c.BasisCode, &c.Agency, &c.RateTableKey, &c.DefaultAmount, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Create implements component.ComponentRepository.
func (r *componentRepository) Create(ctx context.Context, c component.SalaryComponent) (component.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_components (
			id, company_id, code, name, type, is_taxable, is_deminimis,
			basis_code, agency, rate_table_key, default_amount, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		c.ID, c.CompanyID, c.Code, c.Name, c.Type, c.IsTaxable, c.IsDeMinimis,
		c.BasisCode, c.Agency, c.RateTableKey, c.DefaultAmount, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return component.SalaryComponent{}, component.ErrComponentCodeExists
		}
		return component.SalaryComponent{}, fmt.Errorf("failed to create salary component: %w", err)
	}

	return c, nil
}

// GetByID implements component.ComponentRepository.
func (r *componentRepository) GetByID(ctx context.Context, id string, companyID string) (component.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + componentColumns + ` FROM salary_components WHERE id = $1 AND company_id = $2`

	c, err := scanComponent(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return component.SalaryComponent{}, component.ErrComponentNotFound
		}
		return component.SalaryComponent{}, fmt.Errorf("failed to get salary component: %w", err)
	}

	return c, nil
}

// GetByCode implements component.ComponentRepository.
func (r *componentRepository) GetByCode(ctx context.Context, code string, companyID string) (component.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + componentColumns + ` FROM salary_components WHERE code = $1 AND company_id = $2`

	c, err := scanComponent(q.QueryRow(ctx, query, code, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return component.SalaryComponent{}, component.ErrComponentNotFound
		}
		return component.SalaryComponent{}, fmt.Errorf("failed to get salary component by code: %w", err)
	}

	return c, nil
}

// List implements component.ComponentRepository.
func (r *componentRepository) List(ctx context.Context, companyID string, activeOnly bool) ([]component.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + componentColumns + ` FROM salary_components WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY code`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary components: %w", err)
	}
	defer rows.Close()

	var components []component.SalaryComponent
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		components = append(components, c)
	}

	return components, rows.Err()
}

// Deactivate implements component.ComponentRepository.
func (r *componentRepository) Deactivate(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE salary_components SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to deactivate salary component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return component.ErrComponentNotFound
	}

	return nil
}

// IsReferencedByFinalizedRun implements component.ComponentRepository.
func (r *componentRepository) IsReferencedByFinalizedRun(ctx context.Context, code string, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM calculation_results res
			JOIN calculation_runs run ON run.id = res.run_id
			JOIN payroll_periods p ON p.id = run.period_id
			WHERE run.company_id = $1
			  AND p.status = 'finalized'
			  AND res.line_items @> jsonb_build_array(jsonb_build_object('component_code', $2::text))
		)
	`

	var referenced bool
	if err := q.QueryRow(ctx, query, companyID, code).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check finalized references: %w", err)
	}

	return referenced, nil
}

const assignmentColumns = `
	a.id, a.employee_id, a.component_id, a.amount, a.percentage, a.units,
	a.frequency, a.effective_date, a.end_date, a.is_prorated, a.requires_attendance,
	a.created_at, a.updated_at, c.code, c.type
`

func scanAssignment(row pgx.Row) (component.Assignment, error) {
	var a component.Assignment
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.ComponentID, &a.Amount, &a.Percentage, &a.Units,
		&a.Frequency, &a.EffectiveDate, &a.EndDate, &a.IsProrated, &a.RequiresAttendance,
		&a.CreatedAt, &a.UpdatedAt, &a.ComponentCode, &a.ComponentType,
	)
	return a, err
}

// CreateAssignment implements component.ComponentRepository. The insert is
// guarded against an overlapping window for the same employee+component,
// atomically with the write.
func (r *componentRepository) CreateAssignment(ctx context.Context, a component.Assignment, companyID string) (component.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO component_assignments (
			id, employee_id, component_id, amount, percentage, units,
			frequency, effective_date, end_date, is_prorated, requires_attendance
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE NOT EXISTS (
			SELECT 1 FROM component_assignments existing
			WHERE existing.employee_id = $2
			  AND existing.component_id = $3
			  AND ($9::date IS NULL OR existing.effective_date < $9)
			  AND (existing.end_date IS NULL OR existing.end_date > $8)
		)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.ID, a.EmployeeID, a.ComponentID, a.Amount, a.Percentage, a.Units,
		a.Frequency, a.EffectiveDate, a.EndDate, a.IsProrated, a.RequiresAttendance,
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return component.Assignment{}, component.ErrOverlappingAssignment
		}
		return component.Assignment{}, fmt.Errorf("failed to create component assignment: %w", err)
	}

	return a, nil
}

// GetAssignmentsForEmployee implements component.ComponentRepository.
func (r *componentRepository) GetAssignmentsForEmployee(ctx context.Context, employeeID string, companyID string, activeOn *time.Time) ([]component.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM component_assignments a
		JOIN salary_components c ON c.id = a.component_id
		WHERE a.employee_id = $1
		  AND c.company_id = $2
	`
	args := []interface{}{employeeID, companyID}
	if activeOn != nil {
		query += ` AND a.effective_date <= $3 AND (a.end_date IS NULL OR a.end_date > $3) AND c.is_active = TRUE`
		args = append(args, *activeOn)
	}
	query += ` ORDER BY a.effective_date`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list component assignments: %w", err)
	}
	defer rows.Close()

	var assignments []component.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

// EndAssignment implements component.ComponentRepository.
func (r *componentRepository) EndAssignment(ctx context.Context, id string, companyID string, endDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE component_assignments a
		SET end_date = $1, updated_at = NOW()
		FROM salary_components c
		WHERE a.id = $2 AND a.component_id = c.id AND c.company_id = $3
	`

	tag, err := q.Exec(ctx, query, endDate, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to end component assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return component.ErrAssignmentNotFound
	}

	return nil
}
