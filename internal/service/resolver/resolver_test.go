package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/attendance"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/domain/ratetable"
	"github.com/payrollhq/payroll-engine-go/internal/repository/memory"
	ratetablesvc "github.com/payrollhq/payroll-engine-go/internal/service/ratetable"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID  = "company-1"
	testEmployeeID = "employee-1"
)

func testPeriod() period.PayrollPeriod {
	return period.PayrollPeriod{
		ID:         "period-1",
		CompanyID:  testCompanyID,
		PeriodType: period.PeriodTypeMonthly,
		StartDate:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		PayDate:    time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC),
		Status:     period.StatusDraft,
	}
}

type fixture struct {
	components *memory.ComponentStore
	tables     *memory.RateTableStore
	attendance *memory.AttendanceStub
	resolver   *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	components := memory.NewComponentStore()
	tables := memory.NewRateTableStore()
	att := memory.NewAttendanceStub()
	provider := ratetablesvc.NewRateTableService(tables, memory.NewAuditStore(), time.Second)
	return &fixture{
		components: components,
		tables:     tables,
		attendance: att,
		resolver:   NewResolver(components, provider, att, time.Second),
	}
}

func (f *fixture) addComponent(t *testing.T, c component.SalaryComponent) component.SalaryComponent {
	t.Helper()
	c.ID = uuid.Must(uuid.NewV7()).String()
	c.CompanyID = testCompanyID
	c.IsActive = true
	created, err := f.components.Create(context.Background(), c)
	require.NoError(t, err)
	return created
}

func (f *fixture) assign(t *testing.T, componentID string, a component.Assignment) {
	t.Helper()
	a.ID = uuid.Must(uuid.NewV7()).String()
	a.EmployeeID = testEmployeeID
	a.ComponentID = componentID
	if a.EffectiveDate.IsZero() {
		a.EffectiveDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if a.Frequency == "" {
		a.Frequency = component.FrequencyPerPeriod
	}
	_, err := f.components.CreateAssignment(context.Background(), a, testCompanyID)
	require.NoError(t, err)
}

func amountPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(s string) *string { return &s }

func findResolved(results []ResolvedComponent, code string) (ResolvedComponent, bool) {
	for _, rc := range results {
		if rc.Code == code {
			return rc, true
		}
	}
	return ResolvedComponent{}, false
}

func TestResolve_FixedAmount(t *testing.T) {
	f := newFixture(t)
	basic := f.addComponent(t, component.SalaryComponent{Code: "BASIC", Name: "Basic Salary", Type: component.TypeEarning, IsTaxable: true})
	f.assign(t, basic.ID, component.Assignment{Amount: amountPtr("30000")})

	results, warnings, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, results, 1)
	assert.True(t, results[0].Amount.Equal(decimal.RequireFromString("30000")))
}

func TestResolve_PercentageUsesBasis(t *testing.T) {
	f := newFixture(t)
	basic := f.addComponent(t, component.SalaryComponent{Code: "BASIC", Name: "Basic Salary", Type: component.TypeEarning, IsTaxable: true})
	transport := f.addComponent(t, component.SalaryComponent{Code: "TRANSPORT", Name: "Transport Allowance", Type: component.TypeAllowance, IsTaxable: true, BasisCode: strPtr("BASIC")})

	f.assign(t, basic.ID, component.Assignment{Amount: amountPtr("30000")})
	f.assign(t, transport.ID, component.Assignment{Percentage: amountPtr("10")})

	results, _, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	require.NoError(t, err)

	rc, ok := findResolved(results, "TRANSPORT")
	require.True(t, ok)
	assert.True(t, rc.Amount.Equal(decimal.RequireFromString("3000")), "got %s", rc.Amount)
	// Basis must be resolved before the dependent component.
	assert.Equal(t, "BASIC", results[0].Code)
}

func TestResolve_BasisCycleFails(t *testing.T) {
	f := newFixture(t)
	a := f.addComponent(t, component.SalaryComponent{Code: "ALLOW_A", Name: "A", Type: component.TypeAllowance, BasisCode: strPtr("ALLOW_B")})
	b := f.addComponent(t, component.SalaryComponent{Code: "ALLOW_B", Name: "B", Type: component.TypeAllowance, BasisCode: strPtr("ALLOW_A")})

	f.assign(t, a.ID, component.Assignment{Percentage: amountPtr("10")})
	f.assign(t, b.ID, component.Assignment{Percentage: amountPtr("20")})

	_, _, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	assert.ErrorIs(t, err, component.ErrComponentCycle)
}

func TestResolve_ProrationRoundsHalfUp(t *testing.T) {
	f := newFixture(t)
	basic := f.addComponent(t, component.SalaryComponent{Code: "BASIC", Name: "Basic Salary", Type: component.TypeEarning, IsTaxable: true})
	f.assign(t, basic.ID, component.Assignment{Amount: amountPtr("30000"), IsProrated: true})

	f.attendance.Seed(testEmployeeID, attendance.Summary{DaysWorked: 20})

	results, warnings, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// 30000 * 20/31 = 19354.8387... rounds to 19354.84.
	assert.True(t, results[0].Amount.Equal(decimal.RequireFromString("19354.84")), "got %s", results[0].Amount)
}

func TestResolve_MissingAttendanceZeroesWithWarning(t *testing.T) {
	f := newFixture(t)
	overtime := f.addComponent(t, component.SalaryComponent{Code: "OT", Name: "Overtime", Type: component.TypeEarning, IsTaxable: true, DefaultAmount: amountPtr("250")})
	f.assign(t, overtime.ID, component.Assignment{Units: amountPtr("0"), RequiresAttendance: true})

	results, warnings, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Amount.IsZero())
	assert.NotEmpty(t, warnings)
}

func TestResolve_AttendanceDrivenUnits(t *testing.T) {
	f := newFixture(t)
	overtime := f.addComponent(t, component.SalaryComponent{Code: "OT", Name: "Overtime", Type: component.TypeEarning, IsTaxable: true, DefaultAmount: amountPtr("250")})
	f.assign(t, overtime.ID, component.Assignment{Units: amountPtr("0"), RequiresAttendance: true})

	f.attendance.Seed(testEmployeeID, attendance.Summary{
		DaysWorked:    22,
		HoursWorked:   decimal.RequireFromString("0"),
		OvertimeHours: decimal.RequireFromString("8"),
	})

	results, warnings, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, results[0].Amount.Equal(decimal.RequireFromString("2000")), "got %s", results[0].Amount)
}

func publishStatutoryTables(t *testing.T, tables *memory.RateTableStore) {
	t.Helper()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := tables.Publish(context.Background(), ratetable.RateTable{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Key:           "SSS_CONTRIB",
		Agency:        "SSS",
		Kind:          ratetable.KindContribution,
		EffectiveFrom: from,
		EmployeeRate:  decimal.RequireFromString("0.06"),
		EmployerRate:  decimal.RequireFromString("0.085"),
		EmployeeCap:   amountPtr("1800"),
		EmployerCap:   amountPtr("2550"),
	})
	require.NoError(t, err)

	_, err = tables.Publish(context.Background(), ratetable.RateTable{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Key:           "BIR_WITHHOLDING",
		Agency:        "BIR",
		Kind:          ratetable.KindTaxBrackets,
		EffectiveFrom: from,
		Brackets: []ratetable.Bracket{
			{Over: decimal.Zero, UpTo: amountPtr("20833"), BaseTax: decimal.Zero, Rate: decimal.Zero},
			{Over: decimal.RequireFromString("20833"), UpTo: amountPtr("33332"), BaseTax: decimal.Zero, Rate: decimal.RequireFromString("0.15")},
			{Over: decimal.RequireFromString("33332"), UpTo: nil, BaseTax: decimal.RequireFromString("1874.85"), Rate: decimal.RequireFromString("0.20")},
		},
	})
	require.NoError(t, err)
}

func TestResolve_ContributionsAndTax(t *testing.T) {
	f := newFixture(t)
	publishStatutoryTables(t, f.tables)

	basic := f.addComponent(t, component.SalaryComponent{Code: "BASIC", Name: "Basic Salary", Type: component.TypeEarning, IsTaxable: true})
	rice := f.addComponent(t, component.SalaryComponent{Code: "RICE", Name: "Rice Subsidy", Type: component.TypeAllowance, IsTaxable: true, IsDeMinimis: true})
	sss := f.addComponent(t, component.SalaryComponent{Code: "SSS", Name: "SSS Contribution", Type: component.TypeContribution, Agency: strPtr("SSS"), RateTableKey: strPtr("SSS_CONTRIB")})
	tax := f.addComponent(t, component.SalaryComponent{Code: "WTAX", Name: "Withholding Tax", Type: component.TypeTax, Agency: strPtr("BIR"), RateTableKey: strPtr("BIR_WITHHOLDING")})

	f.assign(t, basic.ID, component.Assignment{Amount: amountPtr("30000")})
	f.assign(t, rice.ID, component.Assignment{Amount: amountPtr("2000")})
	f.assign(t, sss.ID, component.Assignment{Amount: amountPtr("0")})
	f.assign(t, tax.ID, component.Assignment{Amount: amountPtr("0")})

	results, warnings, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Contribution: 6% of 32000 gross = 1920, capped at 1800.
	sssRC, ok := findResolved(results, "SSS")
	require.True(t, ok)
	assert.True(t, sssRC.Amount.Equal(decimal.RequireFromString("1800")), "got %s", sssRC.Amount)
	assert.True(t, sssRC.EmployerShare.Equal(decimal.RequireFromString("2550")), "got %s", sssRC.EmployerShare)

	// Taxable: 30000 taxable pays - 1800 contribution = 28200 (rice is de minimis).
	// Tax: (28200 - 20833) * 0.15 = 1105.05.
	taxRC, ok := findResolved(results, "WTAX")
	require.True(t, ok)
	assert.True(t, taxRC.Basis.Equal(decimal.RequireFromString("28200")), "basis %s", taxRC.Basis)
	assert.True(t, taxRC.Amount.Equal(decimal.RequireFromString("1105.05")), "got %s", taxRC.Amount)
}

func TestResolve_MissingRateTableFailsEmployee(t *testing.T) {
	f := newFixture(t)
	sss := f.addComponent(t, component.SalaryComponent{Code: "SSS", Name: "SSS Contribution", Type: component.TypeContribution, Agency: strPtr("SSS"), RateTableKey: strPtr("SSS_CONTRIB")})
	f.assign(t, sss.ID, component.Assignment{Amount: amountPtr("0")})

	_, _, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	assert.ErrorIs(t, err, ratetable.ErrRateTableNotFound)
}

func TestResolve_OverridesReplaceComputedAmount(t *testing.T) {
	f := newFixture(t)
	basic := f.addComponent(t, component.SalaryComponent{Code: "BASIC", Name: "Basic Salary", Type: component.TypeEarning, IsTaxable: true})
	f.assign(t, basic.ID, component.Assignment{Amount: amountPtr("30000")})

	overrides := map[string]decimal.Decimal{"BASIC": decimal.RequireFromString("25000")}
	results, _, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), overrides)
	require.NoError(t, err)
	assert.True(t, results[0].Amount.Equal(decimal.RequireFromString("25000")))
}

func TestResolve_AssignmentWindowExcluded(t *testing.T) {
	f := newFixture(t)
	basic := f.addComponent(t, component.SalaryComponent{Code: "BASIC", Name: "Basic Salary", Type: component.TypeEarning, IsTaxable: true})
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f.assign(t, basic.ID, component.Assignment{Amount: amountPtr("30000"), EndDate: &end})

	results, _, err := f.resolver.Resolve(context.Background(), testCompanyID, testEmployeeID, testPeriod(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
