package adjustment

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/domain/identity"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/locker"
	"github.com/payrollhq/payroll-engine-go/internal/repository/memory"
	calculationsvc "github.com/payrollhq/payroll-engine-go/internal/service/calculation"
	periodsvc "github.com/payrollhq/payroll-engine-go/internal/service/period"
	ratetablesvc "github.com/payrollhq/payroll-engine-go/internal/service/ratetable"
	"github.com/payrollhq/payroll-engine-go/internal/service/resolver"
	"github.com/shopspring/decimal"
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
		"role":       "payroll_manager",
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fixture struct {
	periods     *memory.PeriodStore
	runs        *memory.RunStore
	adjustments *memory.AdjustmentStore
	components  *memory.ComponentStore
	identity    *memory.IdentityStub
	engine      calculation.EngineService
	service     adjustment.ManagerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		periods:     memory.NewPeriodStore(),
		runs:        memory.NewRunStore(),
		adjustments: memory.NewAdjustmentStore(),
		components:  memory.NewComponentStore(),
		identity:    memory.NewIdentityStub(),
	}

	trail := memory.NewAuditStore()
	tables := memory.NewRateTableStore()
	provider := ratetablesvc.NewRateTableService(tables, trail, time.Second)
	res := resolver.NewResolver(f.components, provider, memory.NewAttendanceStub(), time.Second)
	lifecycle := periodsvc.NewPeriodService(f.periods, trail)
	f.engine = calculationsvc.NewEngineService(f.runs, f.periods, f.adjustments, lifecycle, res, f.identity, locker.NewMemoryLocker(), trail, 4)
	f.service = NewAdjustmentService(f.adjustments, f.periods, f.runs, f.engine, trail)
	return f
}

func (f *fixture) createPeriod(t *testing.T, status period.Status) period.PayrollPeriod {
	t.Helper()
	p := period.PayrollPeriod{
		ID:              uuid.Must(uuid.NewV7()).String(),
		CompanyID:       testCompanyID,
		PeriodType:      period.PeriodTypeMonthly,
		StartDate:       time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		PayDate:         time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC),
		Status:          status,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	created, err := f.periods.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

// seedCalculatedPeriod runs the engine once so the period sits in
// calculated with a BASIC line for employee-1.
func (f *fixture) seedCalculatedPeriod(t *testing.T, ctx context.Context) period.PayrollPeriod {
	t.Helper()
	p := f.createPeriod(t, period.StatusDraft)
	f.identity.Add(identity.Employee{ID: "employee-1", CompanyID: testCompanyID, EmploymentStatus: identity.StatusActive})

	amount := decimal.RequireFromString("30000")
	basic, err := f.components.Create(context.Background(), component.SalaryComponent{
		ID: uuid.Must(uuid.NewV7()).String(), CompanyID: testCompanyID,
		Code: "BASIC", Name: "Basic Salary", Type: component.TypeEarning, IsTaxable: true, IsActive: true,
	})
	require.NoError(t, err)
	_, err = f.components.CreateAssignment(context.Background(), component.Assignment{
		ID: uuid.Must(uuid.NewV7()).String(), EmployeeID: "employee-1", ComponentID: basic.ID,
		Amount: &amount, Frequency: component.FrequencyPerPeriod,
		EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}, testCompanyID)
	require.NoError(t, err)

	_, err = f.engine.Run(ctx, p.ID)
	require.NoError(t, err)

	updated, err := f.periods.GetByID(context.Background(), p.ID, testCompanyID)
	require.NoError(t, err)
	require.Equal(t, period.StatusCalculated, updated.Status)
	return updated
}

func submitRequest(periodID string) adjustment.SubmitAdjustmentRequest {
	return adjustment.SubmitAdjustmentRequest{
		PeriodID:      periodID,
		EmployeeID:    "employee-1",
		ComponentCode: "BASIC",
		NewValue:      decimal.RequireFromString("27500"),
		Reason:        "unpaid leave missed by the attendance feed",
	}
}

func TestSubmit_CapturesCurrentValue(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "officer-1")
	p := f.seedCalculatedPeriod(t, ctx)

	created, err := f.service.Submit(ctx, submitRequest(p.ID))
	require.NoError(t, err)
	assert.Equal(t, "pending", created.ApprovalStatus)
	assert.True(t, created.OldValue.Equal(decimal.RequireFromString("30000")), "old value %s", created.OldValue)
	assert.True(t, created.NewValue.Equal(decimal.RequireFromString("27500")))
	assert.Equal(t, "officer-1", created.CreatedBy)
}

func TestSubmit_LockedPeriodRejected(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "officer-1")
	p := f.createPeriod(t, period.StatusFinalized)

	_, err := f.service.Submit(ctx, submitRequest(p.ID))
	assert.ErrorIs(t, err, period.ErrPeriodLocked)
}

func TestSubmit_CancelledPeriodRejected(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "officer-1")
	p := f.createPeriod(t, period.StatusCancelled)

	_, err := f.service.Submit(ctx, submitRequest(p.ID))
	assert.ErrorIs(t, err, period.ErrInvalidPeriodState)
}

func TestSubmit_RequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "officer-1")
	p := f.createPeriod(t, period.StatusDraft)

	req := submitRequest(p.ID)
	req.Reason = ""
	_, err := f.service.Submit(ctx, req)
	assert.Error(t, err)
}

func TestApprove_RejectsSubmitter(t *testing.T) {
	f := newFixture(t)
	submitter := authContext(t, "officer-1")
	p := f.seedCalculatedPeriod(t, submitter)

	created, err := f.service.Submit(submitter, submitRequest(p.ID))
	require.NoError(t, err)

	_, err = f.service.Approve(submitter, created.ID)
	assert.ErrorIs(t, err, adjustment.ErrSelfApproval)
}

func TestApprove_TriggersRecalculation(t *testing.T) {
	f := newFixture(t)
	submitter := authContext(t, "officer-1")
	approver := authContext(t, "manager-1")
	p := f.seedCalculatedPeriod(t, submitter)

	created, err := f.service.Submit(submitter, submitRequest(p.ID))
	require.NoError(t, err)

	approved, err := f.service.Approve(approver, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.ApprovalStatus)

	// The approval re-ran the engine, so the latest payslip already carries
	// the corrected amount.
	runs, err := f.engine.ListRuns(approver, p.ID)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	payslips, err := f.engine.Payslips(approver, p.ID)
	require.NoError(t, err)
	require.Len(t, payslips, 1)
	assert.True(t, payslips[0].GrossPay.Equal(decimal.RequireFromString("27500")), "gross %s", payslips[0].GrossPay)
}

func TestApprove_RejectedWhileUnderReview(t *testing.T) {
	f := newFixture(t)
	submitter := authContext(t, "officer-1")
	approver := authContext(t, "manager-1")
	p := f.seedCalculatedPeriod(t, submitter)

	created, err := f.service.Submit(submitter, submitRequest(p.ID))
	require.NoError(t, err)

	_, err = f.periods.UpdateStatusCAS(context.Background(), p.ID, testCompanyID, period.StatusCalculated, period.StatusReviewing, period.StatusUpdate{})
	require.NoError(t, err)

	_, err = f.service.Approve(approver, created.ID)
	assert.ErrorIs(t, err, period.ErrInvalidPeriodState)
}

func TestApprove_AlreadyDecided(t *testing.T) {
	f := newFixture(t)
	submitter := authContext(t, "officer-1")
	approver := authContext(t, "manager-1")
	p := f.seedCalculatedPeriod(t, submitter)

	created, err := f.service.Submit(submitter, submitRequest(p.ID))
	require.NoError(t, err)

	_, err = f.service.Approve(approver, created.ID)
	require.NoError(t, err)

	_, err = f.service.Approve(approver, created.ID)
	assert.ErrorIs(t, err, adjustment.ErrAlreadyDecided)
}

func TestReject_RequiresReason(t *testing.T) {
	f := newFixture(t)
	submitter := authContext(t, "officer-1")
	approver := authContext(t, "manager-1")
	p := f.seedCalculatedPeriod(t, submitter)

	created, err := f.service.Submit(submitter, submitRequest(p.ID))
	require.NoError(t, err)

	_, err = f.service.Reject(approver, created.ID, adjustment.RejectAdjustmentRequest{})
	assert.ErrorIs(t, err, adjustment.ErrRejectReasonRequired)

	rejected, err := f.service.Reject(approver, created.ID, adjustment.RejectAdjustmentRequest{Reason: "attendance feed was corrected upstream"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.ApprovalStatus)
	require.NotNil(t, rejected.RejectReason)

	// A rejected adjustment never reaches the engine.
	runs, err := f.engine.ListRuns(approver, p.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestListByPeriod_FiltersByStatus(t *testing.T) {
	f := newFixture(t)
	submitter := authContext(t, "officer-1")
	approver := authContext(t, "manager-1")
	p := f.seedCalculatedPeriod(t, submitter)

	first, err := f.service.Submit(submitter, submitRequest(p.ID))
	require.NoError(t, err)
	_, err = f.service.Approve(approver, first.ID)
	require.NoError(t, err)

	_, err = f.service.Submit(submitter, submitRequest(p.ID))
	require.NoError(t, err)

	pending := adjustment.StatusPending
	list, err := f.service.ListByPeriod(submitter, p.ID, &pending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pending", list[0].ApprovalStatus)

	all, err := f.service.ListByPeriod(submitter, p.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
