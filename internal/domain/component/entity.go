package component

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enum - the evaluation order of the resolver follows these classes:
// earnings first, then allowances/benefits, then contributions, then taxes,
// then remaining deductions.
type Type string

const (
	TypeEarning      Type = "earning"
	TypeAllowance    Type = "allowance"
	TypeBenefit      Type = "benefit"
	TypeDeduction    Type = "deduction"
	TypeTax          Type = "tax"
	TypeContribution Type = "contribution"
)

// EvaluationRank orders component types for dependency resolution.
// Percentage bases may only reference lower ranks.
func (t Type) EvaluationRank() int {
	switch t {
	case TypeEarning:
		return 0
	case TypeAllowance, TypeBenefit:
		return 1
	case TypeContribution:
		return 2
	case TypeTax:
		return 3
	default:
		return 4
	}
}

// Pays reports whether the type adds to gross pay.
func (t Type) Pays() bool {
	return t == TypeEarning || t == TypeAllowance || t == TypeBenefit
}

// SalaryComponent - a named pay line definition. A component referenced by a
// finalized calculation is immutable; corrections create a new code.
type SalaryComponent struct {
	ID            string
	CompanyID     string
	Code          string
	Name          string
	Type          Type
	IsTaxable     bool
	IsDeMinimis   bool
	BasisCode     *string // component code a percentage assignment computes against
	Agency        *string // remittance agency for contributions/taxes (SSS, PhilHealth, ...)
	RateTableKey  *string // statutory rate table used to compute the amount
	DefaultAmount *decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Frequency enum for assignments
type Frequency string

const (
	FrequencyPerPeriod Frequency = "per_period"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyOneTime   Frequency = "one_time"
)

// Assignment binds a component to an employee. Exactly one of Amount,
// Percentage or Units is set; overlapping windows per employee+component are
// rejected at write time.
type Assignment struct {
	ID                 string
	EmployeeID         string
	ComponentID        string
	Amount             *decimal.Decimal
	Percentage         *decimal.Decimal // percent of the basis component, e.g. 6 = 6%
	Units              *decimal.Decimal // multiplied by the component default rate
	Frequency          Frequency
	EffectiveDate      time.Time
	EndDate            *time.Time
	IsProrated         bool
	RequiresAttendance bool
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	ComponentCode *string
	ComponentType *Type
}

// ActiveOn reports whether the assignment window covers the given date.
func (a Assignment) ActiveOn(d time.Time) bool {
	if d.Before(a.EffectiveDate) {
		return false
	}
	return a.EndDate == nil || d.Before(*a.EndDate)
}

// Overlaps reports whether two assignment windows intersect.
func (a Assignment) Overlaps(other Assignment) bool {
	aEnd := a.EndDate
	bEnd := other.EndDate
	if aEnd != nil && !other.EffectiveDate.Before(*aEnd) {
		return false
	}
	if bEnd != nil && !a.EffectiveDate.Before(*bEnd) {
		return false
	}
	return true
}
