package response

import (
	"errors"
	"net/http"

	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/domain/compliance"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/domain/identity"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/domain/ratetable"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Period domain errors
	case errors.Is(err, period.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, period.ErrPeriodOverlaps):
		Conflict(w, "Period overlaps an existing payroll period")
	case errors.Is(err, period.ErrInvalidPeriodState):
		Conflict(w, err.Error())
	case errors.Is(err, period.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, period.ErrTransitionConflict):
		Conflict(w, "Period status changed concurrently, retry the operation")
	case errors.Is(err, period.ErrPeriodLocked):
		Locked(w, "Period is finalized and locked")
	case errors.Is(err, period.ErrSelfApprovalNotAllowed):
		Forbidden(w, "Approver must differ from preparer")
	case errors.Is(err, period.ErrNoEmployees):
		BadRequest(w, "Period has no calculated employees to review", nil)
	case errors.Is(err, period.ErrCancelReasonRequired):
		BadRequest(w, "Cancellation requires a reason", nil)

	// Calculation domain errors
	case errors.Is(err, calculation.ErrRunNotFound):
		NotFound(w, "Calculation run not found")
	case errors.Is(err, calculation.ErrResultNotFound):
		NotFound(w, "Calculation result not found")
	case errors.Is(err, calculation.ErrRunAlreadyInProgress):
		Conflict(w, "A calculation run is already in progress for this period")
	case errors.Is(err, calculation.ErrNoSuccessfulRun):
		NotFound(w, "Period has no successful calculation run")
	case errors.Is(err, calculation.ErrRunCancelled):
		Conflict(w, "Calculation run was cancelled")

	// Component domain errors
	case errors.Is(err, component.ErrComponentNotFound):
		NotFound(w, "Salary component not found")
	case errors.Is(err, component.ErrComponentCodeExists):
		Conflict(w, "Salary component code already exists")
	case errors.Is(err, component.ErrComponentReferenced):
		Conflict(w, "Component is referenced by a finalized calculation, create a new code instead")
	case errors.Is(err, component.ErrComponentCycle):
		BadRequest(w, "Component basis references form a cycle", nil)
	case errors.Is(err, component.ErrInvalidBasisOrder):
		BadRequest(w, "Component basis may only reference earlier evaluation classes", nil)
	case errors.Is(err, component.ErrAssignmentNotFound):
		NotFound(w, "Component assignment not found")
	case errors.Is(err, component.ErrOverlappingAssignment):
		Conflict(w, "Assignment window overlaps an existing assignment for this component")
	case errors.Is(err, component.ErrEmployeeNotFound), errors.Is(err, identity.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Adjustment domain errors
	case errors.Is(err, adjustment.ErrAdjustmentNotFound):
		NotFound(w, "Adjustment not found")
	case errors.Is(err, adjustment.ErrAlreadyDecided):
		Conflict(w, "Adjustment has already been decided")
	case errors.Is(err, adjustment.ErrSelfApproval):
		Forbidden(w, "Approver must differ from submitter")
	case errors.Is(err, adjustment.ErrRejectReasonRequired):
		BadRequest(w, "Rejection requires a reason", nil)

	// Rate table domain errors
	case errors.Is(err, ratetable.ErrRateTableNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, ratetable.ErrVersionOverlaps):
		Conflict(w, "Rate table version overlaps an existing version")
	case errors.Is(err, ratetable.ErrTableImmutable):
		Conflict(w, "Published rate table versions are immutable")

	// Compliance domain errors
	case errors.Is(err, compliance.ErrReportNotFound):
		NotFound(w, "Compliance report not found")
	case errors.Is(err, compliance.ErrPeriodNotReady):
		Conflict(w, "Period must be approved or finalized before building reports")
	case errors.Is(err, compliance.ErrReportAlreadySubmitted):
		Conflict(w, "Submitted reports cannot be regenerated or modified")
	case errors.Is(err, compliance.ErrInvalidReportState):
		Conflict(w, err.Error())
	case errors.Is(err, compliance.ErrUnknownAgency):
		BadRequest(w, "No remittance configuration for agency", nil)
	case errors.Is(err, compliance.ErrNothingToReport):
		BadRequest(w, "No contribution line items for agency in this period", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
