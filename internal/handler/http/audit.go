package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

type AuditHandler interface {
	Query(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	trail audit.Trail
}

func NewAuditHandler(trail audit.Trail) AuditHandler {
	return &auditHandlerImpl{trail: trail}
}

func (h *auditHandlerImpl) Query(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		response.Unauthorized(w, "Missing company claim")
		return
	}

	filter := audit.Filter{}
	query := r.URL.Query()
	if v := query.Get("entity_type"); v != "" {
		filter.EntityType = &v
	}
	if v := query.Get("entity_id"); v != "" {
		filter.EntityID = &v
	}
	if v := query.Get("actor_id"); v != "" {
		filter.ActorID = &v
	}
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))

	entries, err := h.trail.Query(r.Context(), companyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}
