package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/payrollhq/payroll-engine-go/internal/handler/http/middleware"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Env      string
	LogLevel slog.Level
}

func NewRouter(
	cfg RouterConfig,
	jwtService jwt.Service,
	periodHandler PeriodHandler,
	calculationHandler CalculationHandler,
	componentHandler ComponentHandler,
	adjustmentHandler AdjustmentHandler,
	rateTableHandler RateTableHandler,
	complianceHandler ComplianceHandler,
	auditHandler AuditHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/periods", func(r chi.Router) {
				r.Get("/", periodHandler.List)
				r.Post("/", periodHandler.Create)

				r.Route("/{periodID}", func(r chi.Router) {
					r.Get("/", periodHandler.Get)
					r.Post("/calculate", calculationHandler.Run)
					r.Post("/submit-review", periodHandler.SubmitForReview)
					r.Post("/cancel", periodHandler.Cancel)

					r.Get("/runs", calculationHandler.ListRuns)
					r.Get("/payslips", calculationHandler.Payslips)

					r.Route("/adjustments", func(r chi.Router) {
						r.Get("/", adjustmentHandler.ListByPeriod)
						r.Post("/", adjustmentHandler.Submit)
					})

					r.Route("/reports", func(r chi.Router) {
						r.Get("/", complianceHandler.ListByPeriod)
						r.With(middleware.RequireManager).Post("/", complianceHandler.Build)
					})

					// Maker-checker decisions
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Post("/approve", periodHandler.Approve)
						r.Post("/finalize", periodHandler.Finalize)
					})
				})
			})

			r.Route("/runs/{runID}", func(r chi.Router) {
				r.Get("/", calculationHandler.GetRun)
				r.Get("/results", calculationHandler.ListResults)
			})

			r.Route("/adjustments/{adjustmentID}", func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/approve", adjustmentHandler.Approve)
				r.Post("/reject", adjustmentHandler.Reject)
			})

			r.Route("/components", func(r chi.Router) {
				r.Get("/", componentHandler.List)
				r.Get("/{componentID}", componentHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", componentHandler.Create)
					r.Delete("/{componentID}", componentHandler.Deactivate)
				})
			})

			r.Route("/employees/{employeeID}/assignments", func(r chi.Router) {
				r.Get("/", componentHandler.EmployeeAssignments)
				r.With(middleware.RequireAdmin).Post("/", componentHandler.Assign)
			})
			r.With(middleware.RequireAdmin).Post("/assignments/{assignmentID}/end", componentHandler.EndAssignment)

			r.Route("/rate-tables", func(r chi.Router) {
				r.Get("/{key}/versions", rateTableHandler.ListVersions)
				r.With(middleware.RequireAdmin).Post("/", rateTableHandler.Publish)
			})

			r.Route("/reports/{reportID}", func(r chi.Router) {
				r.Get("/", complianceHandler.Get)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/ready", complianceHandler.MarkReady)
					r.Post("/submit", complianceHandler.MarkSubmitted)
					r.Post("/accept", complianceHandler.MarkAccepted)
				})
			})

			r.Get("/audit", auditHandler.Query)
		})
	})

	return r
}
