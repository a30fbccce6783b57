package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/compliance"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

type ComplianceHandler interface {
	Build(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListByPeriod(w http.ResponseWriter, r *http.Request)
	MarkReady(w http.ResponseWriter, r *http.Request)
	MarkSubmitted(w http.ResponseWriter, r *http.Request)
	MarkAccepted(w http.ResponseWriter, r *http.Request)
}

type complianceHandlerImpl struct {
	service compliance.BuilderService
}

func NewComplianceHandler(service compliance.BuilderService) ComplianceHandler {
	return &complianceHandlerImpl{service: service}
}

func (h *complianceHandlerImpl) Build(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Agency string `json:"agency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Build(r.Context(), chi.URLParam(r, "periodID"), req.Agency)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compliance report built", result)
}

func (h *complianceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *complianceHandlerImpl) ListByPeriod(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListByPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *complianceHandlerImpl) MarkReady(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.MarkReady(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Report marked ready", result)
}

func (h *complianceHandlerImpl) MarkSubmitted(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.MarkSubmitted(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Report marked submitted", result)
}

func (h *complianceHandlerImpl) MarkAccepted(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.MarkAccepted(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Report marked accepted", result)
}
