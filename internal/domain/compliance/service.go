package compliance

import "context"

type BuilderService interface {
	// Build aggregates the latest successful run of an approved/finalized
	// period into an agency remittance report. Rebuilding supersedes a
	// draft/ready report and never touches a submitted one.
	Build(ctx context.Context, periodID string, agency string) (ReportResponse, error)

	Get(ctx context.Context, id string) (ReportResponse, error)
	ListByPeriod(ctx context.Context, periodID string) ([]ReportResponse, error)

	MarkReady(ctx context.Context, id string) (ReportResponse, error)
	MarkSubmitted(ctx context.Context, id string) (ReportResponse, error)
	MarkAccepted(ctx context.Context, id string) (ReportResponse, error)
}
