package ratetable

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind enum
type Kind string

const (
	// KindContribution applies a flat employee/employer rate to a basis,
	// optionally capped per side.
	KindContribution Kind = "contribution"
	// KindTaxBrackets applies a progressive bracket schedule to taxable income.
	KindTaxBrackets Kind = "tax_brackets"
)

// Bracket - one progressive tax band. Tax within the band is
// BaseTax + Rate * (income - Over).
type Bracket struct {
	Over    decimal.Decimal  `json:"over"`
	UpTo    *decimal.Decimal `json:"up_to,omitempty"` // nil = open-ended top band
	BaseTax decimal.Decimal  `json:"base_tax"`
	Rate    decimal.Decimal  `json:"rate"` // fraction, e.g. 0.15
}

// RateTable - one published version of a statutory table. Published versions
// are immutable; a rate change is a new version with a later EffectiveFrom.
type RateTable struct {
	ID            string
	Key           string // e.g. "SSS_CONTRIB", "BIR_WITHHOLDING"
	Agency        string
	Kind          Kind
	EffectiveFrom time.Time
	EffectiveTo   *time.Time // nil = open-ended
	EmployeeRate  decimal.Decimal
	EmployerRate  decimal.Decimal
	EmployeeCap   *decimal.Decimal
	EmployerCap   *decimal.Decimal
	Brackets      []Bracket
	CreatedAt     time.Time
}

// Covers reports whether the version is effective on the given date.
func (t RateTable) Covers(d time.Time) bool {
	if d.Before(t.EffectiveFrom) {
		return false
	}
	return t.EffectiveTo == nil || d.Before(*t.EffectiveTo)
}

// EmployeeShare applies the employee-side rate to basis, honoring the cap.
func (t RateTable) EmployeeShare(basis decimal.Decimal) decimal.Decimal {
	share := basis.Mul(t.EmployeeRate).Round(2)
	if t.EmployeeCap != nil && share.GreaterThan(*t.EmployeeCap) {
		return *t.EmployeeCap
	}
	return share
}

// EmployerShare applies the employer-side rate to basis, honoring the cap.
func (t RateTable) EmployerShare(basis decimal.Decimal) decimal.Decimal {
	share := basis.Mul(t.EmployerRate).Round(2)
	if t.EmployerCap != nil && share.GreaterThan(*t.EmployerCap) {
		return *t.EmployerCap
	}
	return share
}

// TaxFor walks the bracket schedule for the given taxable income.
// Income at or below the first band's floor is taxed at zero.
func (t RateTable) TaxFor(income decimal.Decimal) decimal.Decimal {
	if income.Sign() <= 0 {
		return decimal.Zero
	}
	for _, b := range t.Brackets {
		if income.GreaterThan(b.Over) && (b.UpTo == nil || income.LessThanOrEqual(*b.UpTo)) {
			return b.BaseTax.Add(income.Sub(b.Over).Mul(b.Rate)).Round(2)
		}
	}
	return decimal.Zero
}
