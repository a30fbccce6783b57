package component

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/domain/identity"
	"github.com/payrollhq/payroll-engine-go/internal/repository/memory"
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
		"role":       "payroll_admin",
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fixture struct {
	store    *memory.ComponentStore
	identity *memory.IdentityStub
	service  component.ComponentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewComponentStore(),
		identity: memory.NewIdentityStub(),
	}
	f.identity.Add(identity.Employee{ID: "employee-1", CompanyID: testCompanyID, EmploymentStatus: identity.StatusActive})
	f.service = NewComponentService(f.store, f.identity, memory.NewAuditStore())
	return f
}

func amountPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreate_DefaultsTaxable(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{
		Code: "BASIC", Name: "Basic Salary", Type: "earning",
	})
	require.NoError(t, err)
	assert.True(t, created.IsTaxable)
	assert.False(t, created.IsDeMinimis)
	assert.True(t, created.IsActive)
}

func TestCreate_DuplicateCodeRejected(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	_, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Salary", Type: "earning"})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Pay", Type: "earning"})
	assert.ErrorIs(t, err, component.ErrComponentCodeExists)
}

func TestCreate_ContributionRequiresRateTable(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	_, err := f.service.Create(ctx, component.CreateComponentRequest{
		Code: "SSS", Name: "SSS Contribution", Type: "contribution", Agency: strPtr("SSS"),
	})
	assert.Error(t, err)
}

func TestCreate_BasisMustResolveEarlier(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	_, err := f.service.Create(ctx, component.CreateComponentRequest{
		Code: "WTAX", Name: "Withholding Tax", Type: "tax", RateTableKey: strPtr("BIR_WITHHOLDING"),
	})
	require.NoError(t, err)

	// An earning cannot compute off a tax: the tax resolves later.
	_, err = f.service.Create(ctx, component.CreateComponentRequest{
		Code: "GROSSUP", Name: "Tax Gross-Up", Type: "earning", BasisCode: strPtr("WTAX"),
	})
	assert.ErrorIs(t, err, component.ErrInvalidBasisOrder)
}

func TestCreate_UnknownBasisRejected(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	_, err := f.service.Create(ctx, component.CreateComponentRequest{
		Code: "TRANSPORT", Name: "Transport Allowance", Type: "allowance", BasisCode: strPtr("MISSING"),
	})
	assert.ErrorIs(t, err, component.ErrComponentNotFound)
}

func TestDeactivate_FinalizedReferenceBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Salary", Type: "earning"})
	require.NoError(t, err)

	f.store.MarkFinalized("BASIC")
	err = f.service.Deactivate(ctx, created.ID)
	assert.ErrorIs(t, err, component.ErrComponentReferenced)
}

func TestDeactivate_StopsNewAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BONUS", Name: "One-Time Bonus", Type: "earning"})
	require.NoError(t, err)
	require.NoError(t, f.service.Deactivate(ctx, created.ID))

	_, err = f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "employee-1", ComponentID: created.ID,
		Amount: amountPtr("5000"), Frequency: "one_time", EffectiveDate: "2025-08-01",
	})
	assert.ErrorIs(t, err, component.ErrComponentNotFound)
}

func TestAssign_UnknownEmployeeRejected(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Salary", Type: "earning"})
	require.NoError(t, err)

	_, err = f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "ghost", ComponentID: created.ID,
		Amount: amountPtr("30000"), Frequency: "per_period", EffectiveDate: "2025-01-01",
	})
	assert.ErrorIs(t, err, component.ErrEmployeeNotFound)
}

func TestAssign_OverlappingWindowsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Salary", Type: "earning"})
	require.NoError(t, err)

	_, err = f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "employee-1", ComponentID: created.ID,
		Amount: amountPtr("30000"), Frequency: "per_period", EffectiveDate: "2025-01-01",
	})
	require.NoError(t, err)

	_, err = f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "employee-1", ComponentID: created.ID,
		Amount: amountPtr("32000"), Frequency: "per_period", EffectiveDate: "2025-06-01",
	})
	assert.ErrorIs(t, err, component.ErrOverlappingAssignment)
}

func TestAssign_ExactlyOneValueKind(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Salary", Type: "earning"})
	require.NoError(t, err)

	_, err = f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "employee-1", ComponentID: created.ID,
		Amount: amountPtr("30000"), Percentage: amountPtr("10"),
		Frequency: "per_period", EffectiveDate: "2025-01-01",
	})
	assert.Error(t, err)
}

func TestEndAssignment_ThenReassignSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Salary", Type: "earning"})
	require.NoError(t, err)

	first, err := f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "employee-1", ComponentID: created.ID,
		Amount: amountPtr("30000"), Frequency: "per_period", EffectiveDate: "2025-01-01",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.EndAssignment(ctx, first.ID, "2025-06-01"))

	// The new window starts where the old one ended; half-open windows
	// never overlap at the boundary.
	_, err = f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "employee-1", ComponentID: created.ID,
		Amount: amountPtr("32000"), Frequency: "per_period", EffectiveDate: "2025-06-01",
	})
	require.NoError(t, err)

	assignments, err := f.service.EmployeeAssignments(ctx, "employee-1")
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
}

func TestAssign_ProratedFlagCarried(t *testing.T) {
	f := newFixture(t)
	ctx := authContext(t, "admin-1")

	created, err := f.service.Create(ctx, component.CreateComponentRequest{Code: "BASIC", Name: "Basic Salary", Type: "earning"})
	require.NoError(t, err)

	a, err := f.service.Assign(ctx, component.AssignComponentRequest{
		EmployeeID: "employee-1", ComponentID: created.ID,
		Amount: amountPtr("30000"), Frequency: "per_period", EffectiveDate: "2025-01-01",
		IsProrated: boolPtr(true), RequiresAttendance: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, a.IsProrated)
	assert.True(t, a.RequiresAttendance)
	assert.Equal(t, "BASIC", a.ComponentCode)
}
