package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

type PeriodHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	SubmitForReview(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type periodHandlerImpl struct {
	lifecycle period.LifecycleService
}

func NewPeriodHandler(lifecycle period.LifecycleService) PeriodHandler {
	return &periodHandlerImpl{lifecycle: lifecycle}
}

func (h *periodHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req period.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.lifecycle.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", result)
}

func (h *periodHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.lifecycle.Get(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *periodHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := period.PeriodFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := period.Status(s)
		filter.Status = &status
	}
	if y := r.URL.Query().Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "Invalid year", nil)
			return
		}
		filter.Year = &year
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.lifecycle.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *periodHandlerImpl) SubmitForReview(w http.ResponseWriter, r *http.Request) {
	result, err := h.lifecycle.SubmitForReview(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Period submitted for review", result)
}

func (h *periodHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.lifecycle.Approve(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Period approved", result)
}

func (h *periodHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.lifecycle.Finalize(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Period finalized", result)
}

func (h *periodHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	var req period.CancelPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.lifecycle.Cancel(r.Context(), chi.URLParam(r, "periodID"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Period cancelled", result)
}
