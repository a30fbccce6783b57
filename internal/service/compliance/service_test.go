package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/domain/compliance"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "company-1"

var testDueDays = map[string]int{
	"SSS":        10,
	"PHILHEALTH": 15,
	"HDMF":       20,
	"BIR":        10,
}

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
	reports *memory.ReportStore
	periods *memory.PeriodStore
	runs    *memory.RunStore
	service compliance.BuilderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reports: memory.NewReportStore(),
		periods: memory.NewPeriodStore(),
		runs:    memory.NewRunStore(),
	}
	f.service = NewComplianceService(f.reports, f.periods, f.runs, memory.NewAuditStore(), testDueDays)
	return f
}

func (f *fixture) createPeriod(t *testing.T, status period.Status) period.PayrollPeriod {
	t.Helper()
	p, err := f.periods.Create(context.Background(), period.PayrollPeriod{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  testCompanyID,
		PeriodType: period.PeriodTypeMonthly,
		StartDate:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		PayDate:    time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC),
		Status:     status,
	})
	require.NoError(t, err)
	return p
}

func sssLine(employee, employer string) calculation.LineItem {
	agency := "SSS"
	return calculation.LineItem{
		ComponentCode: "SSS",
		ComponentType: "contribution",
		Agency:        &agency,
		Amount:        decimal.RequireFromString(employee),
		EmployerShare: decimal.RequireFromString(employer),
	}
}

// seedResults records one successful run with SSS lines for two employees
// and a third employee with no agency lines at all.
func (f *fixture) seedResults(t *testing.T, periodID string) {
	t.Helper()
	run, err := f.runs.CreateRun(context.Background(), calculation.Run{
		ID:        uuid.Must(uuid.NewV7()).String(),
		PeriodID:  periodID,
		CompanyID: testCompanyID,
		RunNumber: 1,
		Status:    calculation.RunStatusSuccess,
		StartedAt: time.Now(),
	})
	require.NoError(t, err)

	rows := []struct {
		employee string
		lines    []calculation.LineItem
	}{
		{"employee-1", []calculation.LineItem{sssLine("1800", "2550")}},
		{"employee-2", []calculation.LineItem{sssLine("900", "1275")}},
		{"employee-3", nil},
	}
	for _, row := range rows {
		_, err := f.runs.CreateResult(context.Background(), calculation.EmployeeResult{
			ID:         uuid.Must(uuid.NewV7()).String(),
			RunID:      run.ID,
			EmployeeID: row.employee,
			LineItems:  row.lines,
			Status:     calculation.ResultStatusSuccess,
			CreatedAt:  time.Now(),
		})
		require.NoError(t, err)
	}
}

func TestBuild_AggregatesAgencyLines(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "manager-1")
	p := f.createPeriod(t, period.StatusApproved)
	f.seedResults(t, p.ID)

	// Lowercase input normalizes to the configured agency code.
	report, err := f.service.Build(ctx, p.ID, "sss")
	require.NoError(t, err)

	assert.Equal(t, "SSS", report.Agency)
	assert.Equal(t, "sss_remittance", report.ReportType)
	assert.True(t, report.EmployeeShare.Equal(decimal.RequireFromString("2700")), "employee share %s", report.EmployeeShare)
	assert.True(t, report.EmployerShare.Equal(decimal.RequireFromString("3825")), "employer share %s", report.EmployerShare)
	assert.True(t, report.TotalContribution.Equal(decimal.RequireFromString("6525")))
	assert.Equal(t, 2, report.EmployeeCount)
	assert.Equal(t, "draft", report.Status)
	// SSS due day 10 in the month after the August period.
	assert.Equal(t, "2025-09-10", report.DueDate)
}

func TestBuild_PeriodMustBeApprovedOrFinalized(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "manager-1")
	p := f.createPeriod(t, period.StatusCalculated)
	f.seedResults(t, p.ID)

	_, err := f.service.Build(ctx, p.ID, "SSS")
	assert.ErrorIs(t, err, compliance.ErrPeriodNotReady)
}

func TestBuild_UnknownAgency(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "manager-1")
	p := f.createPeriod(t, period.StatusApproved)

	_, err := f.service.Build(ctx, p.ID, "IRS")
	assert.ErrorIs(t, err, compliance.ErrUnknownAgency)
}

func TestBuild_NothingToReport(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "manager-1")
	p := f.createPeriod(t, period.StatusApproved)
	f.seedResults(t, p.ID)

	_, err := f.service.Build(ctx, p.ID, "HDMF")
	assert.ErrorIs(t, err, compliance.ErrNothingToReport)
}

func TestBuild_RegenerationSupersedesDraft(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "manager-1")
	p := f.createPeriod(t, period.StatusApproved)
	f.seedResults(t, p.ID)

	first, err := f.service.Build(ctx, p.ID, "SSS")
	require.NoError(t, err)
	second, err := f.service.Build(ctx, p.ID, "SSS")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := f.service.ListByPeriod(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStatusAdvance_FullChain(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "manager-1")
	p := f.createPeriod(t, period.StatusApproved)
	f.seedResults(t, p.ID)

	report, err := f.service.Build(ctx, p.ID, "SSS")
	require.NoError(t, err)

	// Draft cannot skip straight to submitted.
	_, err = f.service.MarkSubmitted(ctx, report.ID)
	assert.ErrorIs(t, err, compliance.ErrInvalidReportState)

	ready, err := f.service.MarkReady(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "ready", ready.Status)

	submitted, err := f.service.MarkSubmitted(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", submitted.Status)
	assert.NotNil(t, submitted.SubmissionDate)

	// Submitted reports are immutable: no regeneration, no going back.
	_, err = f.service.Build(ctx, p.ID, "SSS")
	assert.ErrorIs(t, err, compliance.ErrReportAlreadySubmitted)
	_, err = f.service.MarkReady(ctx, report.ID)
	assert.ErrorIs(t, err, compliance.ErrReportAlreadySubmitted)

	accepted, err := f.service.MarkAccepted(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)
}
