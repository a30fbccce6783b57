package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/domain/compliance"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{period.ErrPeriodNotFound, http.StatusNotFound, "NOT_FOUND"},
		{period.ErrPeriodOverlaps, http.StatusConflict, "CONFLICT"},
		{period.ErrTransitionConflict, http.StatusConflict, "CONFLICT"},
		{period.ErrPeriodLocked, http.StatusLocked, "LOCKED"},
		{period.ErrSelfApprovalNotAllowed, http.StatusForbidden, "FORBIDDEN"},
		{period.ErrNoEmployees, http.StatusBadRequest, "BAD_REQUEST"},
		{calculation.ErrRunAlreadyInProgress, http.StatusConflict, "CONFLICT"},
		{calculation.ErrNoSuccessfulRun, http.StatusNotFound, "NOT_FOUND"},
		{component.ErrComponentCodeExists, http.StatusConflict, "CONFLICT"},
		{component.ErrComponentCycle, http.StatusBadRequest, "BAD_REQUEST"},
		{component.ErrOverlappingAssignment, http.StatusConflict, "CONFLICT"},
		{adjustment.ErrSelfApproval, http.StatusForbidden, "FORBIDDEN"},
		{adjustment.ErrAlreadyDecided, http.StatusConflict, "CONFLICT"},
		{compliance.ErrPeriodNotReady, http.StatusConflict, "CONFLICT"},
		{compliance.ErrUnknownAgency, http.StatusBadRequest, "BAD_REQUEST"},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestHandleError_WrappedErrorsStillMatch(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("period abc is finalized: %w", period.ErrInvalidPeriodState))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleError_ValidationErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "must be a valid date (YYYY-MM-DD)", body.Error.Details["start_date"])
}
