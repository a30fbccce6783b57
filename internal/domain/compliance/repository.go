package compliance

import "context"

// ReportRepository persists agency remittance reports.
type ReportRepository interface {
	// Upsert replaces an existing draft/ready report for (period, agency)
	// or inserts a new one. It must fail with ErrReportAlreadySubmitted when
	// a submitted/accepted report exists for the pair.
	Upsert(ctx context.Context, r Report) (Report, error)

	GetByID(ctx context.Context, id string, companyID string) (Report, error)
	GetByPeriodAgency(ctx context.Context, periodID, agency, companyID string) (Report, error)
	ListByPeriod(ctx context.Context, periodID string, companyID string) ([]Report, error)

	// UpdateStatus advances draft -> ready -> submitted -> accepted.
	UpdateStatus(ctx context.Context, id string, companyID string, status Status) (Report, error)
}
