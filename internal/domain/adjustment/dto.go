package adjustment

import (
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type SubmitAdjustmentRequest struct {
	PeriodID      string          `json:"period_id"`
	EmployeeID    string          `json:"employee_id"`
	ComponentCode string          `json:"component_code"`
	NewValue      decimal.Decimal `json:"new_value"`
	Reason        string          `json:"reason"`
}

func (r *SubmitAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PeriodID) {
		errs = append(errs, validator.ValidationError{Field: "period_id", Message: "is required"})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.ComponentCode) {
		errs = append(errs, validator.ValidationError{Field: "component_code", Message: "is required"})
	}
	if r.NewValue.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "new_value", Message: "must be non-negative"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectAdjustmentRequest struct {
	Reason string `json:"reason"`
}

type AdjustmentResponse struct {
	ID             string          `json:"id"`
	PeriodID       string          `json:"period_id"`
	EmployeeID     string          `json:"employee_id"`
	ComponentCode  string          `json:"component_code"`
	OldValue       decimal.Decimal `json:"old_value"`
	NewValue       decimal.Decimal `json:"new_value"`
	Reason         string          `json:"reason"`
	ApprovalStatus string          `json:"approval_status"`
	CreatedBy      string          `json:"created_by"`
	ApprovedBy     *string         `json:"approved_by,omitempty"`
	RejectReason   *string         `json:"reject_reason,omitempty"`
}
