package component

import (
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateComponentRequest struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	IsTaxable     *bool            `json:"is_taxable,omitempty"`
	IsDeMinimis   *bool            `json:"is_deminimis,omitempty"`
	BasisCode     *string          `json:"basis_code,omitempty"`
	Agency        *string          `json:"agency,omitempty"`
	RateTableKey  *string          `json:"rate_table_key,omitempty"`
	DefaultAmount *decimal.Decimal `json:"default_amount,omitempty"`
}

func (r *CreateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidComponentCode(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "must be 2-30 uppercase alphanumeric characters"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	switch Type(r.Type) {
	case TypeEarning, TypeAllowance, TypeBenefit, TypeDeduction, TypeTax, TypeContribution:
	default:
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be one of earning, allowance, benefit, deduction, tax, contribution"})
	}
	if r.DefaultAmount != nil && r.DefaultAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "default_amount", Message: "must be non-negative"})
	}
	if Type(r.Type) == TypeContribution || Type(r.Type) == TypeTax {
		if r.RateTableKey == nil || validator.IsEmpty(*r.RateTableKey) {
			errs = append(errs, validator.ValidationError{Field: "rate_table_key", Message: "is required for contribution and tax components"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComponentResponse struct {
	ID            string           `json:"id"`
	CompanyID     string           `json:"company_id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	IsTaxable     bool             `json:"is_taxable"`
	IsDeMinimis   bool             `json:"is_deminimis"`
	BasisCode     *string          `json:"basis_code,omitempty"`
	Agency        *string          `json:"agency,omitempty"`
	RateTableKey  *string          `json:"rate_table_key,omitempty"`
	DefaultAmount *decimal.Decimal `json:"default_amount,omitempty"`
	IsActive      bool             `json:"is_active"`
}

type AssignComponentRequest struct {
	EmployeeID         string           `json:"-"`
	ComponentID        string           `json:"component_id"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Percentage         *decimal.Decimal `json:"percentage,omitempty"`
	Units              *decimal.Decimal `json:"units,omitempty"`
	Frequency          string           `json:"frequency"`
	EffectiveDate      string           `json:"effective_date"`
	EndDate            *string          `json:"end_date,omitempty"`
	IsProrated         *bool            `json:"is_prorated,omitempty"`
	RequiresAttendance *bool            `json:"requires_attendance,omitempty"`
}

func (r *AssignComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ComponentID) {
		errs = append(errs, validator.ValidationError{Field: "component_id", Message: "is required"})
	}

	set := 0
	for _, v := range []*decimal.Decimal{r.Amount, r.Percentage, r.Units} {
		if v != nil {
			set++
			if v.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: "amount", Message: "values must be non-negative"})
			}
		}
	}
	if set != 1 {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "exactly one of amount, percentage or units is required"})
	}

	switch Frequency(r.Frequency) {
	case FrequencyPerPeriod, FrequencyMonthly, FrequencyOneTime:
	default:
		errs = append(errs, validator.ValidationError{Field: "frequency", Message: "must be one of per_period, monthly, one_time"})
	}

	eff, effOK := validator.IsValidDate(r.EffectiveDate)
	if !effOK {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.EndDate != nil {
		end, endOK := validator.IsValidDate(*r.EndDate)
		if !endOK {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
		} else if effOK && !eff.Before(end) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be strictly after effective_date"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignmentResponse struct {
	ID                 string           `json:"id"`
	EmployeeID         string           `json:"employee_id"`
	ComponentID        string           `json:"component_id"`
	ComponentCode      string           `json:"component_code"`
	ComponentType      string           `json:"component_type"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Percentage         *decimal.Decimal `json:"percentage,omitempty"`
	Units              *decimal.Decimal `json:"units,omitempty"`
	Frequency          string           `json:"frequency"`
	EffectiveDate      string           `json:"effective_date"`
	EndDate            *string          `json:"end_date,omitempty"`
	IsProrated         bool             `json:"is_prorated"`
	RequiresAttendance bool             `json:"requires_attendance"`
}
