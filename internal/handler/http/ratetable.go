package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/ratetable"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

type RateTableHandler interface {
	Publish(w http.ResponseWriter, r *http.Request)
	ListVersions(w http.ResponseWriter, r *http.Request)
}

type rateTableHandlerImpl struct {
	service ratetable.AdminService
}

func NewRateTableHandler(service ratetable.AdminService) RateTableHandler {
	return &rateTableHandlerImpl{service: service}
}

func (h *rateTableHandlerImpl) Publish(w http.ResponseWriter, r *http.Request) {
	var req ratetable.PublishRateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Publish(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Rate table version published", result)
}

func (h *rateTableHandlerImpl) ListVersions(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListVersions(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
