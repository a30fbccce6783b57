package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/response"
)

// Roles carried in the access token. Admins manage components and rate
// tables; managers decide approvals; officers prepare and run payroll.
const (
	RoleAdmin   = "payroll_admin"
	RoleManager = "payroll_manager"
	RoleOfficer = "payroll_officer"
)

// RequireRole allows the request through when the token role is one of the
// given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			role, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' not allowed", role))
		})
	}
}

// RequireAdmin requires the payroll_admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(RoleAdmin)(next)
}

// RequireManager requires a deciding role (manager or admin).
func RequireManager(next http.Handler) http.Handler {
	return RequireRole(RoleManager, RoleAdmin)(next)
}
