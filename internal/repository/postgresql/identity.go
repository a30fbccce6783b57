package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/identity"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type identityProvider struct {
	db *database.DB
}

// NewIdentityProvider reads the employee roster maintained by the HR system.
func NewIdentityProvider(db *database.DB) identity.Provider {
	return &identityProvider{db: db}
}

// Employee implements identity.Provider.
func (p *identityProvider) Employee(ctx context.Context, employeeID string, companyID string) (identity.Employee, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, company_id, department_id, employment_status
		FROM employees
		WHERE id = $1 AND company_id = $2
	`

	var e identity.Employee
	err := q.QueryRow(ctx, query, employeeID, companyID).Scan(
		&e.ID, &e.CompanyID, &e.DepartmentID, &e.EmploymentStatus,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return identity.Employee{}, identity.ErrEmployeeNotFound
		}
		return identity.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

// ActiveEmployees implements identity.Provider. On-leave employees stay on
// the roster; only terminated ones are excluded.
func (p *identityProvider) ActiveEmployees(ctx context.Context, companyID string) ([]identity.Employee, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, company_id, department_id, employment_status
		FROM employees
		WHERE company_id = $1
		  AND employment_status IN ('active', 'on_leave')
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []identity.Employee
	for rows.Next() {
		var e identity.Employee
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.DepartmentID, &e.EmploymentStatus); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	return employees, rows.Err()
}
