package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

type ComponentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)

	Assign(w http.ResponseWriter, r *http.Request)
	EmployeeAssignments(w http.ResponseWriter, r *http.Request)
	EndAssignment(w http.ResponseWriter, r *http.Request)
}

type componentHandlerImpl struct {
	service component.ComponentService
}

func NewComponentHandler(service component.ComponentService) ComponentHandler {
	return &componentHandlerImpl{service: service}
}

func (h *componentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req component.CreateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary component created", result)
}

func (h *componentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context(), chi.URLParam(r, "componentID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *componentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	result, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *componentHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "componentID")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary component deactivated", nil)
}

func (h *componentHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req component.AssignComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.service.Assign(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Component assigned", result)
}

func (h *componentHandlerImpl) EmployeeAssignments(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.EmployeeAssignments(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *componentHandlerImpl) EndAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EndDate string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.EndAssignment(r.Context(), chi.URLParam(r, "assignmentID"), req.EndDate); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Assignment ended", nil)
}
