package period

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "company-1"

func authContext(t *testing.T, userID string) context.Context {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"user_id":    userID,
		"company_id": testCompanyID,
		"role":       "payroll_officer",
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func newService(t *testing.T) (period.LifecycleService, *memory.PeriodStore, *memory.AuditStore) {
	t.Helper()
	store := memory.NewPeriodStore()
	trail := memory.NewAuditStore()
	return NewPeriodService(store, trail), store, trail
}

func createDraft(t *testing.T, svc period.LifecycleService, ctx context.Context) period.PeriodResponse {
	t.Helper()
	created, err := svc.Create(ctx, period.CreatePeriodRequest{
		PeriodType: "monthly",
		StartDate:  "2025-08-01",
		EndDate:    "2025-08-31",
		PayDate:    "2025-09-05",
	})
	require.NoError(t, err)
	return created
}

func TestCreate_DraftWithZeroTotals(t *testing.T) {
	svc, _, trail := newService(t)
	ctx := authContext(t, "officer-1")

	created := createDraft(t, svc, ctx)
	assert.Equal(t, "draft", created.Status)
	assert.True(t, created.TotalGross.IsZero())
	assert.True(t, created.TotalNet.IsZero())
	assert.Equal(t, []string{"period_created"}, trail.Actions(created.ID))
}

func TestCreate_OverlapRejected(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authContext(t, "officer-1")
	createDraft(t, svc, ctx)

	_, err := svc.Create(ctx, period.CreatePeriodRequest{
		PeriodType: "semi_monthly",
		StartDate:  "2025-08-16",
		EndDate:    "2025-09-15",
		PayDate:    "2025-09-20",
	})
	assert.ErrorIs(t, err, period.ErrPeriodOverlaps)
}

func TestCreate_InvalidDatesRejected(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authContext(t, "officer-1")

	_, err := svc.Create(ctx, period.CreatePeriodRequest{
		PeriodType: "monthly",
		StartDate:  "2025-08-31",
		EndDate:    "2025-08-01",
		PayDate:    "2025-09-05",
	})
	assert.Error(t, err)
}

func TestSubmitForReview_RequiresCalculatedEmployees(t *testing.T) {
	svc, store, trail := newService(t)
	ctx := authContext(t, "officer-1")
	created := createDraft(t, svc, ctx)

	// Draft cannot skip straight to reviewing.
	_, err := svc.SubmitForReview(ctx, created.ID)
	assert.ErrorIs(t, err, period.ErrInvalidPeriodState)
	assert.Contains(t, trail.Actions(created.ID), "period_transition_rejected")

	_, err = svc.MarkCalculating(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.MarkCalculated(ctx, created.ID)
	require.NoError(t, err)

	// Calculated but with zero employees still cannot go to review.
	_, err = svc.SubmitForReview(ctx, created.ID)
	assert.ErrorIs(t, err, period.ErrNoEmployees)

	require.NoError(t, store.UpdateTotals(context.Background(), created.ID, testCompanyID, period.Totals{EmployeeCount: 3}))

	submitted, err := svc.SubmitForReview(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "reviewing", submitted.Status)
	require.NotNil(t, submitted.PreparedBy)
	assert.Equal(t, "officer-1", *submitted.PreparedBy)
}

func TestApprove_RejectsPreparer(t *testing.T) {
	svc, store, _ := newService(t)
	preparer := authContext(t, "officer-1")
	created := createDraft(t, svc, preparer)

	_, err := svc.MarkCalculating(preparer, created.ID)
	require.NoError(t, err)
	_, err = svc.MarkCalculated(preparer, created.ID)
	require.NoError(t, err)
	require.NoError(t, store.UpdateTotals(context.Background(), created.ID, testCompanyID, period.Totals{EmployeeCount: 3}))
	_, err = svc.SubmitForReview(preparer, created.ID)
	require.NoError(t, err)

	_, err = svc.Approve(preparer, created.ID)
	assert.ErrorIs(t, err, period.ErrSelfApprovalNotAllowed)

	approved, err := svc.Approve(authContext(t, "manager-1"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "manager-1", *approved.ApprovedBy)
}

func TestFinalize_LocksPeriod(t *testing.T) {
	svc, store, _ := newService(t)
	preparer := authContext(t, "officer-1")
	approver := authContext(t, "manager-1")
	created := createDraft(t, svc, preparer)

	_, err := svc.MarkCalculating(preparer, created.ID)
	require.NoError(t, err)
	_, err = svc.MarkCalculated(preparer, created.ID)
	require.NoError(t, err)
	require.NoError(t, store.UpdateTotals(context.Background(), created.ID, testCompanyID, period.Totals{EmployeeCount: 3}))
	_, err = svc.SubmitForReview(preparer, created.ID)
	require.NoError(t, err)
	_, err = svc.Approve(approver, created.ID)
	require.NoError(t, err)

	finalized, err := svc.Finalize(approver, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "finalized", finalized.Status)
	assert.NotNil(t, finalized.LockedAt)

	// A finalized period cannot be recalculated or cancelled.
	_, err = svc.MarkCalculating(preparer, created.ID)
	assert.ErrorIs(t, err, period.ErrInvalidPeriodState)
	_, err = svc.Cancel(preparer, created.ID, period.CancelPeriodRequest{Reason: "wrong cutoff"})
	assert.ErrorIs(t, err, period.ErrPeriodLocked)
}

func TestCancel_RequiresReason(t *testing.T) {
	svc, _, trail := newService(t)
	ctx := authContext(t, "officer-1")
	created := createDraft(t, svc, ctx)

	_, err := svc.Cancel(ctx, created.ID, period.CancelPeriodRequest{})
	assert.ErrorIs(t, err, period.ErrCancelReasonRequired)

	cancelled, err := svc.Cancel(ctx, created.ID, period.CancelPeriodRequest{Reason: "duplicate of July run"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "duplicate of July run", *cancelled.CancelReason)
	assert.Contains(t, trail.Actions(created.ID), "period_status_changed")
}

func TestMarkCalculating_PassthroughWhileCalculating(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authContext(t, "officer-1")
	created := createDraft(t, svc, ctx)

	first, err := svc.MarkCalculating(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, period.StatusCalculating, first.Status)

	again, err := svc.MarkCalculating(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, period.StatusCalculating, again.Status)
}

func TestList_Pagination(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authContext(t, "officer-1")

	months := []struct{ start, end, pay string }{
		{"2025-06-01", "2025-06-30", "2025-07-05"},
		{"2025-07-01", "2025-07-31", "2025-08-05"},
		{"2025-08-01", "2025-08-31", "2025-09-05"},
	}
	for _, m := range months {
		_, err := svc.Create(ctx, period.CreatePeriodRequest{
			PeriodType: "monthly", StartDate: m.start, EndDate: m.end, PayDate: m.pay,
		})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, period.PeriodFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
	assert.Len(t, list.Data, 2)
}
