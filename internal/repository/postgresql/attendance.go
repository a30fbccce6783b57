package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/attendance"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type attendanceProvider struct {
	db *database.DB
}

// NewAttendanceProvider reads validated attendance summaries written by the
// upstream time-tracking pipeline.
func NewAttendanceProvider(db *database.DB) attendance.Provider {
	return &attendanceProvider{db: db}
}

// Summary implements attendance.Provider.
func (p *attendanceProvider) Summary(ctx context.Context, employeeID string, companyID string, from, to time.Time) (attendance.Summary, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT employee_id, days_worked, hours_worked, overtime_hours
		FROM attendance_summaries
		WHERE employee_id = $1
		  AND company_id = $2
		  AND period_start = $3
		  AND period_end = $4
		  AND validated = TRUE
	`

	var s attendance.Summary
	err := q.QueryRow(ctx, query, employeeID, companyID, from, to).Scan(
		&s.EmployeeID, &s.DaysWorked, &s.HoursWorked, &s.OvertimeHours,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Summary{}, attendance.ErrSummaryUnavailable
		}
		return attendance.Summary{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}

	return s, nil
}
