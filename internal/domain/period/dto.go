package period

import (
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePeriodRequest struct {
	PeriodType string `json:"period_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PayDate    string `json:"pay_date"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	switch PeriodType(r.PeriodType) {
	case PeriodTypeWeekly, PeriodTypeSemiMonthly, PeriodTypeMonthly:
	default:
		errs = append(errs, validator.ValidationError{Field: "period_type", Message: "must be 'weekly', 'semi_monthly' or 'monthly'"})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	pay, payOK := validator.IsValidDate(r.PayDate)
	if !payOK {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if startOK && endOK && !start.Before(end) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be after start_date"})
	}
	if endOK && payOK && !end.Before(pay) {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must be after end_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CancelPeriodRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelPeriodRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.ValidationErrors{{Field: "reason", Message: "is required"}}
	}
	return nil
}

type PeriodResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	PeriodType      string          `json:"period_type"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PayDate         string          `json:"pay_date"`
	Status          string          `json:"status"`
	EmployeeCount   int             `json:"employee_count"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	PreparedBy      *string         `json:"prepared_by,omitempty"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	CancelReason    *string         `json:"cancel_reason,omitempty"`
	LockedAt        *string         `json:"locked_at,omitempty"`
}

type PeriodFilter struct {
	Status *Status
	Year   *int
	Page   int
	Limit  int
}

type ListPeriodResponse struct {
	Data       []PeriodResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}
