package compliance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/domain/calculation"
	"github.com/payrollhq/payroll-engine-go/internal/domain/compliance"
	"github.com/payrollhq/payroll-engine-go/internal/domain/period"
	"github.com/shopspring/decimal"
)

// ComplianceServiceImpl aggregates the latest successful run into agency
// remittance reports. Reports regenerate freely until submitted.
type ComplianceServiceImpl struct {
	repo       compliance.ReportRepository
	periodRepo period.PeriodRepository
	runRepo    calculation.RunRepository
	trail      audit.Trail
	// agencyDueDays maps agency code to the statutory due day-of-month in
	// the month following the period.
	agencyDueDays map[string]int
}

func NewComplianceService(
	repo compliance.ReportRepository,
	periodRepo period.PeriodRepository,
	runRepo calculation.RunRepository,
	trail audit.Trail,
	agencyDueDays map[string]int,
) compliance.BuilderService {
	return &ComplianceServiceImpl{
		repo:          repo,
		periodRepo:    periodRepo,
		runRepo:       runRepo,
		trail:         trail,
		agencyDueDays: agencyDueDays,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

func (s *ComplianceServiceImpl) Build(ctx context.Context, periodID string, agency string) (compliance.ReportResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return compliance.ReportResponse{}, err
	}

	agency = strings.ToUpper(strings.TrimSpace(agency))
	dueDay, ok := s.agencyDueDays[agency]
	if !ok {
		return compliance.ReportResponse{}, fmt.Errorf("agency %s: %w", agency, compliance.ErrUnknownAgency)
	}

	p, err := s.periodRepo.GetByID(ctx, periodID, companyID)
	if err != nil {
		return compliance.ReportResponse{}, err
	}
	if p.Status != period.StatusApproved && p.Status != period.StatusFinalized {
		return compliance.ReportResponse{}, fmt.Errorf("period %s is %s: %w", periodID, p.Status, compliance.ErrPeriodNotReady)
	}

	results, err := s.runRepo.LatestSuccessfulResults(ctx, periodID, companyID)
	if err != nil {
		return compliance.ReportResponse{}, err
	}

	employeeShare := decimal.Zero
	employerShare := decimal.Zero
	employeeCount := 0
	for _, r := range results {
		counted := false
		for _, li := range r.LineItems {
			if li.Agency == nil || *li.Agency != agency {
				continue
			}
			employeeShare = employeeShare.Add(li.Amount)
			employerShare = employerShare.Add(li.EmployerShare)
			counted = true
		}
		if counted {
			employeeCount++
		}
	}
	if employeeCount == 0 {
		return compliance.ReportResponse{}, fmt.Errorf("agency %s: %w", agency, compliance.ErrNothingToReport)
	}

	report := compliance.Report{
		ID:                uuid.Must(uuid.NewV7()).String(),
		PeriodID:          periodID,
		CompanyID:         companyID,
		Agency:            agency,
		ReportType:        strings.ToLower(agency) + "_remittance",
		EmployeeShare:     employeeShare,
		EmployerShare:     employerShare,
		TotalContribution: employeeShare.Add(employerShare),
		EmployeeCount:     employeeCount,
		Status:            compliance.StatusDraft,
		DueDate:           dueDate(p.EndDate, dueDay),
		GeneratedAt:       time.Now(),
	}

	saved, err := s.repo.Upsert(ctx, report)
	if err != nil {
		return compliance.ReportResponse{}, err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityReport,
		EntityID:   saved.ID,
		Action:     "compliance_report_built",
		ActorID:    userID,
		NewValues: map[string]any{
			"period_id":          periodID,
			"agency":             agency,
			"employee_share":     saved.EmployeeShare.String(),
			"employer_share":     saved.EmployerShare.String(),
			"total_contribution": saved.TotalContribution.String(),
			"employee_count":     saved.EmployeeCount,
			"due_date":           saved.DueDate.Format("2006-01-02"),
		},
		Timestamp: time.Now(),
	})

	return mapToResponse(saved), nil
}

// dueDate returns the agency due day in the month following the period end.
func dueDate(periodEnd time.Time, day int) time.Time {
	firstOfNext := time.Date(periodEnd.Year(), periodEnd.Month(), 1, 0, 0, 0, 0, periodEnd.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, day-1)
}

func (s *ComplianceServiceImpl) Get(ctx context.Context, id string) (compliance.ReportResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return compliance.ReportResponse{}, err
	}

	report, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return compliance.ReportResponse{}, err
	}
	return mapToResponse(report), nil
}

func (s *ComplianceServiceImpl) ListByPeriod(ctx context.Context, periodID string) ([]compliance.ReportResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	reports, err := s.repo.ListByPeriod(ctx, periodID, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]compliance.ReportResponse, 0, len(reports))
	for _, r := range reports {
		result = append(result, mapToResponse(r))
	}
	return result, nil
}

func (s *ComplianceServiceImpl) MarkReady(ctx context.Context, id string) (compliance.ReportResponse, error) {
	return s.advance(ctx, id, compliance.StatusDraft, compliance.StatusReady, "compliance_report_ready")
}

func (s *ComplianceServiceImpl) MarkSubmitted(ctx context.Context, id string) (compliance.ReportResponse, error) {
	return s.advance(ctx, id, compliance.StatusReady, compliance.StatusSubmitted, "compliance_report_submitted")
}

func (s *ComplianceServiceImpl) MarkAccepted(ctx context.Context, id string) (compliance.ReportResponse, error) {
	return s.advance(ctx, id, compliance.StatusSubmitted, compliance.StatusAccepted, "compliance_report_accepted")
}

// advance moves a report one step along draft -> ready -> submitted ->
// accepted. Any other starting state is refused.
func (s *ComplianceServiceImpl) advance(ctx context.Context, id string, from, to compliance.Status, action string) (compliance.ReportResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return compliance.ReportResponse{}, err
	}

	report, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return compliance.ReportResponse{}, err
	}
	if report.Status != from {
		if report.Status == compliance.StatusSubmitted || report.Status == compliance.StatusAccepted {
			return compliance.ReportResponse{}, compliance.ErrReportAlreadySubmitted
		}
		return compliance.ReportResponse{}, fmt.Errorf("report %s is %s, expected %s: %w", id, report.Status, from, compliance.ErrInvalidReportState)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, companyID, to)
	if err != nil {
		return compliance.ReportResponse{}, err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityReport,
		EntityID:   id,
		Action:     action,
		ActorID:    userID,
		OldValues:  map[string]any{"status": string(from)},
		NewValues:  map[string]any{"status": string(to)},
		Timestamp:  time.Now(),
	})

	return mapToResponse(updated), nil
}

func mapToResponse(r compliance.Report) compliance.ReportResponse {
	var submissionDate *string
	if r.SubmissionDate != nil {
		str := r.SubmissionDate.Format("2006-01-02")
		submissionDate = &str
	}

	return compliance.ReportResponse{
		ID:                r.ID,
		PeriodID:          r.PeriodID,
		Agency:            r.Agency,
		ReportType:        r.ReportType,
		EmployeeShare:     r.EmployeeShare,
		EmployerShare:     r.EmployerShare,
		TotalContribution: r.TotalContribution,
		EmployeeCount:     r.EmployeeCount,
		Status:            string(r.Status),
		SubmissionDate:    submissionDate,
		DueDate:           r.DueDate.Format("2006-01-02"),
	}
}
