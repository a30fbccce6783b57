package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/compliance"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) compliance.ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = `
	id, period_id, company_id, agency, report_type, employee_share, employer_share,
	total_contribution, employee_count, status, submission_date, due_date, generated_at
`

func scanReport(row pgx.Row) (compliance.Report, error) {
	var r compliance.Report
	err := row.Scan(
		&r.ID, &r.PeriodID, &r.CompanyID, &r.Agency, &r.ReportType, &r.EmployeeShare, &r.EmployerShare,
		&r.TotalContribution, &r.EmployeeCount, &r.Status, &r.SubmissionDate, &r.DueDate, &r.GeneratedAt,
	)
	return r, err
}

// Upsert implements compliance.ReportRepository. A draft/ready report for
// the same (period, agency) is replaced; a submitted or accepted one blocks
// the write.
func (r *reportRepository) Upsert(ctx context.Context, report compliance.Report) (compliance.Report, error) {
	q := GetQuerier(ctx, r.db)

	var submitted bool
	check := `
		SELECT EXISTS (
			SELECT 1 FROM compliance_reports
			WHERE period_id = $1 AND agency = $2 AND company_id = $3
			  AND status IN ('submitted', 'accepted')
		)
	`
	if err := q.QueryRow(ctx, check, report.PeriodID, report.Agency, report.CompanyID).Scan(&submitted); err != nil {
		return compliance.Report{}, fmt.Errorf("failed to check report status: %w", err)
	}
	if submitted {
		return compliance.Report{}, compliance.ErrReportAlreadySubmitted
	}

	query := `
		INSERT INTO compliance_reports (
			id, period_id, company_id, agency, report_type, employee_share, employer_share,
			total_contribution, employee_count, status, due_date, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (period_id, agency) DO UPDATE SET
			report_type = EXCLUDED.report_type,
			employee_share = EXCLUDED.employee_share,
			employer_share = EXCLUDED.employer_share,
			total_contribution = EXCLUDED.total_contribution,
			employee_count = EXCLUDED.employee_count,
			status = EXCLUDED.status,
			due_date = EXCLUDED.due_date,
			generated_at = EXCLUDED.generated_at
		WHERE compliance_reports.status IN ('draft', 'ready')
		RETURNING ` + reportColumns

	saved, err := scanReport(q.QueryRow(ctx, query,
		report.ID, report.PeriodID, report.CompanyID, report.Agency, report.ReportType,
		report.EmployeeShare, report.EmployerShare, report.TotalContribution,
		report.EmployeeCount, report.Status, report.DueDate, report.GeneratedAt,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			// The row flipped to submitted between the check and the write.
			return compliance.Report{}, compliance.ErrReportAlreadySubmitted
		}
		return compliance.Report{}, fmt.Errorf("failed to upsert compliance report: %w", err)
	}

	return saved, nil
}

// GetByID implements compliance.ReportRepository.
func (r *reportRepository) GetByID(ctx context.Context, id string, companyID string) (compliance.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + reportColumns + ` FROM compliance_reports WHERE id = $1 AND company_id = $2`

	report, err := scanReport(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return compliance.Report{}, compliance.ErrReportNotFound
		}
		return compliance.Report{}, fmt.Errorf("failed to get compliance report: %w", err)
	}

	return report, nil
}

// GetByPeriodAgency implements compliance.ReportRepository.
func (r *reportRepository) GetByPeriodAgency(ctx context.Context, periodID, agency, companyID string) (compliance.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + reportColumns + ` FROM compliance_reports WHERE period_id = $1 AND agency = $2 AND company_id = $3`

	report, err := scanReport(q.QueryRow(ctx, query, periodID, agency, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return compliance.Report{}, compliance.ErrReportNotFound
		}
		return compliance.Report{}, fmt.Errorf("failed to get compliance report: %w", err)
	}

	return report, nil
}

// ListByPeriod implements compliance.ReportRepository.
func (r *reportRepository) ListByPeriod(ctx context.Context, periodID string, companyID string) ([]compliance.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + reportColumns + ` FROM compliance_reports WHERE period_id = $1 AND company_id = $2 ORDER BY agency`

	rows, err := q.Query(ctx, query, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance reports: %w", err)
	}
	defer rows.Close()

	var reports []compliance.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// UpdateStatus implements compliance.ReportRepository. Submission stamps
// the submission date.
func (r *reportRepository) UpdateStatus(ctx context.Context, id string, companyID string, status compliance.Status) (compliance.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compliance_reports
		SET status = $1,
			submission_date = CASE WHEN $1 = 'submitted' THEN NOW() ELSE submission_date END
		WHERE id = $2 AND company_id = $3
		RETURNING ` + reportColumns

	report, err := scanReport(q.QueryRow(ctx, query, status, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return compliance.Report{}, compliance.ErrReportNotFound
		}
		return compliance.Report{}, fmt.Errorf("failed to update report status: %w", err)
	}

	return report, nil
}
