package ratetable

import (
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type PublishRateTableRequest struct {
	Key           string           `json:"key"`
	Agency        string           `json:"agency"`
	Kind          string           `json:"kind"`
	EffectiveFrom string           `json:"effective_from"`
	EffectiveTo   *string          `json:"effective_to,omitempty"`
	EmployeeRate  decimal.Decimal  `json:"employee_rate"`
	EmployerRate  decimal.Decimal  `json:"employer_rate"`
	EmployeeCap   *decimal.Decimal `json:"employee_cap,omitempty"`
	EmployerCap   *decimal.Decimal `json:"employer_cap,omitempty"`
	Brackets      []Bracket        `json:"brackets,omitempty"`
}

func (r *PublishRateTableRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Key) {
		errs = append(errs, validator.ValidationError{Field: "key", Message: "is required"})
	}
	if validator.IsEmpty(r.Agency) {
		errs = append(errs, validator.ValidationError{Field: "agency", Message: "is required"})
	}
	switch Kind(r.Kind) {
	case KindContribution, KindTaxBrackets:
	default:
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be 'contribution' or 'tax_brackets'"})
	}

	from, fromOK := validator.IsValidDate(r.EffectiveFrom)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.EffectiveTo != nil {
		to, toOK := validator.IsValidDate(*r.EffectiveTo)
		if !toOK {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "must be a valid date (YYYY-MM-DD)"})
		} else if fromOK && !from.Before(to) {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "must be after effective_from"})
		}
	}

	if r.EmployeeRate.IsNegative() || r.EmployerRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "employee_rate", Message: "rates must be non-negative"})
	}
	if Kind(r.Kind) == KindTaxBrackets && len(r.Brackets) == 0 {
		errs = append(errs, validator.ValidationError{Field: "brackets", Message: "at least one bracket is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RateTableResponse struct {
	ID            string           `json:"id"`
	Key           string           `json:"key"`
	Agency        string           `json:"agency"`
	Kind          string           `json:"kind"`
	EffectiveFrom string           `json:"effective_from"`
	EffectiveTo   *string          `json:"effective_to,omitempty"`
	EmployeeRate  decimal.Decimal  `json:"employee_rate"`
	EmployerRate  decimal.Decimal  `json:"employer_rate"`
	EmployeeCap   *decimal.Decimal `json:"employee_cap,omitempty"`
	EmployerCap   *decimal.Decimal `json:"employer_cap,omitempty"`
	Brackets      []Bracket        `json:"brackets,omitempty"`
}
