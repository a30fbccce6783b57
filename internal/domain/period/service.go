package period

import "context"

// LifecycleService is the single owner of PayrollPeriod.Status. Every
// transition - including rejected attempts - is audited.
type LifecycleService interface {
	Create(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	Get(ctx context.Context, id string) (PeriodResponse, error)
	List(ctx context.Context, filter PeriodFilter) (ListPeriodResponse, error)

	// MarkCalculating is invoked by the calculation engine only. Re-entrant
	// while a period is already calculating.
	MarkCalculating(ctx context.Context, id string) (PayrollPeriod, error)
	// MarkCalculated is invoked by the engine on a zero-failure run.
	MarkCalculated(ctx context.Context, id string) (PayrollPeriod, error)

	SubmitForReview(ctx context.Context, id string) (PeriodResponse, error)
	Approve(ctx context.Context, id string) (PeriodResponse, error)
	Finalize(ctx context.Context, id string) (PeriodResponse, error)
	Cancel(ctx context.Context, id string, req CancelPeriodRequest) (PeriodResponse, error)
}
