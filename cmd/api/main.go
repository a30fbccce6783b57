package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/payrollhq/payroll-engine-go/internal/config"
	appHTTP "github.com/payrollhq/payroll-engine-go/internal/handler/http"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/jwt"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/locker"
	"github.com/payrollhq/payroll-engine-go/internal/repository/postgresql"
	adjustmentService "github.com/payrollhq/payroll-engine-go/internal/service/adjustment"
	calculationService "github.com/payrollhq/payroll-engine-go/internal/service/calculation"
	componentService "github.com/payrollhq/payroll-engine-go/internal/service/component"
	complianceService "github.com/payrollhq/payroll-engine-go/internal/service/compliance"
	periodService "github.com/payrollhq/payroll-engine-go/internal/service/period"
	rateTableService "github.com/payrollhq/payroll-engine-go/internal/service/ratetable"
	"github.com/payrollhq/payroll-engine-go/internal/service/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	periodRepo := postgresql.NewPeriodRepository(db)
	componentRepo := postgresql.NewComponentRepository(db)
	runRepo := postgresql.NewRunRepository(db)
	adjustmentRepo := postgresql.NewAdjustmentRepository(db)
	rateTableRepo := postgresql.NewRateTableRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	auditTrail := postgresql.NewAuditTrail(db)
	attendanceProvider := postgresql.NewAttendanceProvider(db)
	identityProvider := postgresql.NewIdentityProvider(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	runLocker := locker.NewPGLocker(db)

	rateTables := rateTableService.NewRateTableService(rateTableRepo, auditTrail, cfg.Payroll.LookupTimeout)
	componentResolver := resolver.NewResolver(componentRepo, rateTables, attendanceProvider, cfg.Payroll.LookupTimeout)

	lifecycle := periodService.NewPeriodService(periodRepo, auditTrail)
	engine := calculationService.NewEngineService(
		runRepo,
		periodRepo,
		adjustmentRepo,
		lifecycle,
		componentResolver,
		identityProvider,
		runLocker,
		auditTrail,
		cfg.Payroll.Workers,
	)
	adjustments := adjustmentService.NewAdjustmentService(adjustmentRepo, periodRepo, runRepo, engine, auditTrail)
	components := componentService.NewComponentService(componentRepo, identityProvider, auditTrail)
	reports := complianceService.NewComplianceService(reportRepo, periodRepo, runRepo, auditTrail, cfg.Payroll.AgencyDueDays)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{Env: cfg.App.Env, LogLevel: logLevel(cfg.App.LogLevel)},
		jwtService,
		appHTTP.NewPeriodHandler(lifecycle),
		appHTTP.NewCalculationHandler(engine),
		appHTTP.NewComponentHandler(components),
		appHTTP.NewAdjustmentHandler(adjustments),
		appHTTP.NewRateTableHandler(rateTables),
		appHTTP.NewComplianceHandler(reports),
		appHTTP.NewAuditHandler(auditTrail),
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Println("payroll engine listening on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("server error:", err)
	}
}

func logLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
