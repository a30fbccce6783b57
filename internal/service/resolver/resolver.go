// Package resolver computes the applicable salary components for one
// employee in one period. Evaluation follows a fixed class order - earnings,
// then allowances/benefits, then contributions, then taxes, then remaining
// deductions - with topological ordering inside a class so percentage
// components always see their basis resolved first.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/attendance"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/domain/ratetable"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ResolvedComponent is one computed pay line for an employee.
type ResolvedComponent struct {
	Code          string
	Type          component.Type
	Agency        *string
	IsTaxable     bool
	IsDeMinimis   bool
	Amount        decimal.Decimal
	EmployerShare decimal.Decimal
	Basis         decimal.Decimal
}

// Warning is a non-fatal resolution note, e.g. missing attendance.
type Warning struct {
	ComponentCode string
	Message       string
}

func (w Warning) String() string {
	return w.ComponentCode + ": " + w.Message
}

type Resolver struct {
	componentRepo component.ComponentRepository
	tables        ratetable.Provider
	attendance    attendance.Provider
	lookupTimeout time.Duration
}

func NewResolver(
	componentRepo component.ComponentRepository,
	tables ratetable.Provider,
	attendanceProvider attendance.Provider,
	lookupTimeout time.Duration,
) *Resolver {
	return &Resolver{
		componentRepo: componentRepo,
		tables:        tables,
		attendance:    attendanceProvider,
		lookupTimeout: lookupTimeout,
	}
}

// node pairs an assignment with its component definition during ordering.
type node struct {
	assignment component.Assignment
	comp       component.SalaryComponent
}

// Resolve computes every component assigned to the employee and active on
// the period's pay date. overrides maps component code to an approved
// adjustment value that replaces the computed amount.
func (r *Resolver) Resolve(
	ctx context.Context,
	companyID string,
	employeeID string,
	p period.PayrollPeriod,
	overrides map[string]decimal.Decimal,
) ([]ResolvedComponent, []Warning, error) {
	payDate := p.PayDate
	assignments, err := r.componentRepo.GetAssignmentsForEmployee(ctx, employeeID, companyID, &payDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load assignments for employee %s: %w", employeeID, err)
	}
	if len(assignments) == 0 {
		return nil, nil, nil
	}

	defs, err := r.componentRepo.List(ctx, companyID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load salary components: %w", err)
	}
	byID := make(map[string]component.SalaryComponent, len(defs))
	for _, c := range defs {
		byID[c.ID] = c
	}

	nodes := make([]node, 0, len(assignments))
	for _, a := range assignments {
		comp, ok := byID[a.ComponentID]
		if !ok {
			return nil, nil, fmt.Errorf("assignment %s: %w", a.ID, component.ErrComponentNotFound)
		}
		nodes = append(nodes, node{assignment: a, comp: comp})
	}

	ordered, err := evaluationOrder(nodes)
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning

	// One attendance read serves both attendance-driven units and proration.
	var att *attendance.Summary
	if needsAttendance(ordered) {
		summary, attErr := r.fetchAttendance(ctx, employeeID, companyID, p)
		if attErr != nil {
			warnings = append(warnings, Warning{ComponentCode: "", Message: "attendance unavailable: " + attErr.Error()})
		} else {
			att = &summary
		}
	}

	resolved := make(map[string]ResolvedComponent, len(ordered))
	results := make([]ResolvedComponent, 0, len(ordered))

	for _, n := range ordered {
		var rc ResolvedComponent
		var ws []Warning
		var resErr error

		switch {
		case n.comp.RateTableKey != nil && n.comp.Type == component.TypeContribution:
			rc, resErr = r.resolveContribution(ctx, n, payDate, resolved, results)
		case n.comp.RateTableKey != nil && n.comp.Type == component.TypeTax:
			rc, resErr = r.resolveTax(ctx, n, payDate, results)
		default:
			rc, ws = resolveAssigned(n, p, att, resolved)
		}
		if resErr != nil {
			return nil, warnings, resErr
		}
		warnings = append(warnings, ws...)

		if override, ok := overrides[n.comp.Code]; ok {
			rc.Amount = override
		}

		resolved[rc.Code] = rc
		results = append(results, rc)
	}

	return results, warnings, nil
}

func (r *Resolver) fetchAttendance(ctx context.Context, employeeID, companyID string, p period.PayrollPeriod) (attendance.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()
	return r.attendance.Summary(ctx, employeeID, companyID, p.StartDate, p.EndDate)
}

func needsAttendance(nodes []node) bool {
	for _, n := range nodes {
		if n.assignment.RequiresAttendance || n.assignment.IsProrated {
			return true
		}
	}
	return false
}

// resolveContribution applies the statutory table's employee/employer rates
// to the basis. A missing table version is fatal for this employee only.
func (r *Resolver) resolveContribution(
	ctx context.Context,
	n node,
	payDate time.Time,
	resolved map[string]ResolvedComponent,
	results []ResolvedComponent,
) (ResolvedComponent, error) {
	table, err := r.tables.Resolve(ctx, *n.comp.RateTableKey, payDate)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("rate table %s lookup timed out: %w", *n.comp.RateTableKey, ratetable.ErrRateTableNotFound)
		}
		return ResolvedComponent{}, fmt.Errorf("component %s: %w", n.comp.Code, err)
	}

	basis := grossOf(results)
	if n.comp.BasisCode != nil {
		if b, ok := resolved[*n.comp.BasisCode]; ok {
			basis = b.Amount
		}
	}

	return ResolvedComponent{
		Code:          n.comp.Code,
		Type:          n.comp.Type,
		Agency:        n.comp.Agency,
		IsTaxable:     false,
		Amount:        table.EmployeeShare(basis),
		EmployerShare: table.EmployerShare(basis),
		Basis:         basis,
	}, nil
}

// resolveTax applies the progressive bracket schedule to taxable income:
// taxable pays minus de-minimis/non-taxable components minus contributions.
func (r *Resolver) resolveTax(
	ctx context.Context,
	n node,
	payDate time.Time,
	results []ResolvedComponent,
) (ResolvedComponent, error) {
	table, err := r.tables.Resolve(ctx, *n.comp.RateTableKey, payDate)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("rate table %s lookup timed out: %w", *n.comp.RateTableKey, ratetable.ErrRateTableNotFound)
		}
		return ResolvedComponent{}, fmt.Errorf("component %s: %w", n.comp.Code, err)
	}

	taxable := decimal.Zero
	for _, rc := range results {
		switch {
		case rc.Type.Pays() && rc.IsTaxable && !rc.IsDeMinimis:
			taxable = taxable.Add(rc.Amount)
		case rc.Type == component.TypeContribution:
			taxable = taxable.Sub(rc.Amount)
		}
	}

	return ResolvedComponent{
		Code:   n.comp.Code,
		Type:   n.comp.Type,
		Agency: n.comp.Agency,
		Amount: table.TaxFor(taxable),
		Basis:  taxable,
	}, nil
}

// resolveAssigned computes amount-, percentage- and units-based assignments,
// including attendance gating and proration.
func resolveAssigned(
	n node,
	p period.PayrollPeriod,
	att *attendance.Summary,
	resolved map[string]ResolvedComponent,
) (ResolvedComponent, []Warning) {
	var warnings []Warning
	a := n.assignment
	comp := n.comp

	amount := decimal.Zero
	basis := decimal.Zero

	if a.RequiresAttendance && att == nil {
		// Missing attendance zeroes the component; payroll must not block.
		warnings = append(warnings, Warning{ComponentCode: comp.Code, Message: "attendance data unavailable, component resolved to zero"})
		return resolvedOf(comp, amount, basis), warnings
	}

	switch {
	case a.Amount != nil:
		amount = *a.Amount
		basis = amount
	case a.Percentage != nil:
		if comp.BasisCode == nil {
			warnings = append(warnings, Warning{ComponentCode: comp.Code, Message: "percentage assignment has no basis component, resolved to zero"})
		} else if b, ok := resolved[*comp.BasisCode]; ok {
			basis = b.Amount
			amount = basis.Mul(*a.Percentage).Div(hundred).Round(2)
		} else {
			warnings = append(warnings, Warning{ComponentCode: comp.Code, Message: fmt.Sprintf("basis component %s not assigned, resolved to zero", *comp.BasisCode)})
		}
	case a.Units != nil:
		units := *a.Units
		if a.RequiresAttendance {
			units = att.HoursWorked.Add(att.OvertimeHours)
		}
		rate := decimal.Zero
		if comp.DefaultAmount != nil {
			rate = *comp.DefaultAmount
		} else {
			warnings = append(warnings, Warning{ComponentCode: comp.Code, Message: "units assignment has no default rate, resolved to zero"})
		}
		basis = units
		amount = units.Mul(rate).Round(2)
	}

	if a.IsProrated {
		if att == nil {
			warnings = append(warnings, Warning{ComponentCode: comp.Code, Message: "attendance unavailable, proration skipped"})
		} else {
			standard := decimal.NewFromInt(int64(p.StandardDays()))
			worked := decimal.NewFromInt(int64(att.DaysWorked))
			if worked.LessThan(standard) {
				amount = amount.Mul(worked).Div(standard).Round(2)
			}
		}
	}

	return resolvedOf(comp, amount, basis), warnings
}

func resolvedOf(comp component.SalaryComponent, amount, basis decimal.Decimal) ResolvedComponent {
	return ResolvedComponent{
		Code:        comp.Code,
		Type:        comp.Type,
		Agency:      comp.Agency,
		IsTaxable:   comp.IsTaxable,
		IsDeMinimis: comp.IsDeMinimis,
		Amount:      amount,
		Basis:       basis,
	}
}

func grossOf(results []ResolvedComponent) decimal.Decimal {
	gross := decimal.Zero
	for _, rc := range results {
		if rc.Type.Pays() {
			gross = gross.Add(rc.Amount)
		}
	}
	return gross
}

// evaluationOrder sorts nodes by class rank, then topologically within the
// basis-reference graph. Basis edges may only point at equal or earlier
// ranks; anything unresolved after the walk is a cycle.
func evaluationOrder(nodes []node) ([]node, error) {
	sort.SliceStable(nodes, func(i, j int) bool {
		ri, rj := nodes[i].comp.Type.EvaluationRank(), nodes[j].comp.Type.EvaluationRank()
		if ri != rj {
			return ri < rj
		}
		return nodes[i].comp.Code < nodes[j].comp.Code
	})

	byCode := make(map[string]*node, len(nodes))
	for i := range nodes {
		byCode[nodes[i].comp.Code] = &nodes[i]
	}

	// Validate edge direction: a basis may never reference a later class.
	for _, n := range nodes {
		if n.comp.BasisCode == nil {
			continue
		}
		basis, ok := byCode[*n.comp.BasisCode]
		if !ok {
			continue // unassigned basis resolves to zero later
		}
		if basis.comp.Type.EvaluationRank() > n.comp.Type.EvaluationRank() {
			return nil, fmt.Errorf("component %s basis %s: %w", n.comp.Code, basis.comp.Code, component.ErrInvalidBasisOrder)
		}
	}

	ordered := make([]node, 0, len(nodes))
	done := make(map[string]bool, len(nodes))
	visiting := make(map[string]bool, len(nodes))

	var visit func(n *node) error
	visit = func(n *node) error {
		code := n.comp.Code
		if done[code] {
			return nil
		}
		if visiting[code] {
			return fmt.Errorf("component %s: %w", code, component.ErrComponentCycle)
		}
		visiting[code] = true
		if n.comp.BasisCode != nil {
			if basis, ok := byCode[*n.comp.BasisCode]; ok {
				if err := visit(basis); err != nil {
					return err
				}
			}
		}
		visiting[code] = false
		done[code] = true
		ordered = append(ordered, *n)
		return nil
	}

	for i := range nodes {
		if err := visit(&nodes[i]); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}
