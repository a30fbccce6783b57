package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/adjustment"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

type AdjustmentHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	ListByPeriod(w http.ResponseWriter, r *http.Request)
}

type adjustmentHandlerImpl struct {
	service adjustment.ManagerService
}

func NewAdjustmentHandler(service adjustment.ManagerService) AdjustmentHandler {
	return &adjustmentHandlerImpl{service: service}
}

func (h *adjustmentHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req adjustment.SubmitAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PeriodID = chi.URLParam(r, "periodID")

	result, err := h.service.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Adjustment submitted", result)
}

func (h *adjustmentHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Approve(r.Context(), chi.URLParam(r, "adjustmentID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Adjustment approved", result)
}

func (h *adjustmentHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req adjustment.RejectAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Reject(r.Context(), chi.URLParam(r, "adjustmentID"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Adjustment rejected", result)
}

func (h *adjustmentHandlerImpl) ListByPeriod(w http.ResponseWriter, r *http.Request) {
	var status *adjustment.ApprovalStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := adjustment.ApprovalStatus(s)
		status = &st
	}

	result, err := h.service.ListByPeriod(r.Context(), chi.URLParam(r, "periodID"), status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
