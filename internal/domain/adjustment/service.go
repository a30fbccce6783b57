package adjustment

import "context"

type ManagerService interface {
	Submit(ctx context.Context, req SubmitAdjustmentRequest) (AdjustmentResponse, error)
	Approve(ctx context.Context, id string) (AdjustmentResponse, error)
	Reject(ctx context.Context, id string, req RejectAdjustmentRequest) (AdjustmentResponse, error)
	ListByPeriod(ctx context.Context, periodID string, status *ApprovalStatus) ([]AdjustmentResponse, error)
}
