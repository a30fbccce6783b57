package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

type CalculationHandler interface {
	Run(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	ListResults(w http.ResponseWriter, r *http.Request)
	Payslips(w http.ResponseWriter, r *http.Request)
}

type calculationHandlerImpl struct {
	engine calculation.EngineService
}

func NewCalculationHandler(engine calculation.EngineService) CalculationHandler {
	return &calculationHandlerImpl{engine: engine}
}

func (h *calculationHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Run(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Calculation run completed", summary)
}

func (h *calculationHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *calculationHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.ListRuns(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *calculationHandlerImpl) ListResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.ListResults(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *calculationHandlerImpl) Payslips(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Payslips(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
