package component

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/domain/component"
	"github.com/payrollhq/payroll-engine-go/internal/domain/identity"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
)

// ComponentServiceImpl manages salary component definitions and their
// employee assignments. Components referenced by a finalized run are
// immutable; corrections require a new code.
type ComponentServiceImpl struct {
	repo     component.ComponentRepository
	identity identity.Provider
	trail    audit.Trail
}

func NewComponentService(repo component.ComponentRepository, identityProvider identity.Provider, trail audit.Trail) component.ComponentService {
	return &ComponentServiceImpl{
		repo:     repo,
		identity: identityProvider,
		trail:    trail,
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

func (s *ComponentServiceImpl) Create(ctx context.Context, req component.CreateComponentRequest) (component.ComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return component.ComponentResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return component.ComponentResponse{}, err
	}

	if _, err := s.repo.GetByCode(ctx, req.Code, companyID); err == nil {
		return component.ComponentResponse{}, component.ErrComponentCodeExists
	}

	// A percentage basis must resolve in an earlier evaluation class or the
	// resolver could never order the two.
	if req.BasisCode != nil {
		basis, err := s.repo.GetByCode(ctx, *req.BasisCode, companyID)
		if err != nil {
			return component.ComponentResponse{}, fmt.Errorf("basis %s: %w", *req.BasisCode, err)
		}
		if basis.Type.EvaluationRank() > component.Type(req.Type).EvaluationRank() {
			return component.ComponentResponse{}, component.ErrInvalidBasisOrder
		}
		if basis.Code == req.Code {
			return component.ComponentResponse{}, component.ErrComponentCycle
		}
	}

	isTaxable := true
	if req.IsTaxable != nil {
		isTaxable = *req.IsTaxable
	}
	isDeMinimis := req.IsDeMinimis != nil && *req.IsDeMinimis

	created, err := s.repo.Create(ctx, component.SalaryComponent{
		ID:            uuid.Must(uuid.NewV7()).String(),
		CompanyID:     companyID,
		Code:          req.Code,
		Name:          req.Name,
		Type:          component.Type(req.Type),
		IsTaxable:     isTaxable,
		IsDeMinimis:   isDeMinimis,
		BasisCode:     req.BasisCode,
		Agency:        req.Agency,
		RateTableKey:  req.RateTableKey,
		DefaultAmount: req.DefaultAmount,
		IsActive:      true,
	})
	if err != nil {
		return component.ComponentResponse{}, err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityComponent,
		EntityID:   created.ID,
		Action:     "component_created",
		ActorID:    userID,
		NewValues:  map[string]any{"code": created.Code, "type": string(created.Type)},
		Timestamp:  time.Now(),
	})

	return mapToResponse(created), nil
}

func (s *ComponentServiceImpl) Get(ctx context.Context, id string) (component.ComponentResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return component.ComponentResponse{}, err
	}

	c, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return component.ComponentResponse{}, err
	}
	return mapToResponse(c), nil
}

func (s *ComponentServiceImpl) List(ctx context.Context, activeOnly bool) ([]component.ComponentResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	components, err := s.repo.List(ctx, companyID, activeOnly)
	if err != nil {
		return nil, err
	}

	result := make([]component.ComponentResponse, 0, len(components))
	for _, c := range components {
		result = append(result, mapToResponse(c))
	}
	return result, nil
}

// Deactivate retires a component from new assignments. A component carried
// by a finalized run stays queryable forever; deactivation only stops reuse.
func (s *ComponentServiceImpl) Deactivate(ctx context.Context, id string) error {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	c, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return err
	}

	referenced, err := s.repo.IsReferencedByFinalizedRun(ctx, c.Code, companyID)
	if err != nil {
		return err
	}
	if referenced {
		return component.ErrComponentReferenced
	}

	if err := s.repo.Deactivate(ctx, id, companyID); err != nil {
		return err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityComponent,
		EntityID:   id,
		Action:     "component_deactivated",
		ActorID:    userID,
		OldValues:  map[string]any{"is_active": true},
		NewValues:  map[string]any{"is_active": false},
		Timestamp:  time.Now(),
	})
	return nil
}

func (s *ComponentServiceImpl) Assign(ctx context.Context, req component.AssignComponentRequest) (component.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return component.AssignmentResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return component.AssignmentResponse{}, err
	}

	if _, err := s.identity.Employee(ctx, req.EmployeeID, companyID); err != nil {
		return component.AssignmentResponse{}, fmt.Errorf("employee %s: %w", req.EmployeeID, component.ErrEmployeeNotFound)
	}

	c, err := s.repo.GetByID(ctx, req.ComponentID, companyID)
	if err != nil {
		return component.AssignmentResponse{}, err
	}
	if !c.IsActive {
		return component.AssignmentResponse{}, fmt.Errorf("component %s is inactive: %w", c.Code, component.ErrComponentNotFound)
	}

	effectiveDate, _ := validator.IsValidDate(req.EffectiveDate)
	var endDate *time.Time
	if req.EndDate != nil {
		parsed, _ := validator.IsValidDate(*req.EndDate)
		endDate = &parsed
	}

	assignment := component.Assignment{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		EmployeeID:         req.EmployeeID,
		ComponentID:        req.ComponentID,
		Amount:             req.Amount,
		Percentage:         req.Percentage,
		Units:              req.Units,
		Frequency:          component.Frequency(req.Frequency),
		EffectiveDate:      effectiveDate,
		EndDate:            endDate,
		IsProrated:         req.IsProrated != nil && *req.IsProrated,
		RequiresAttendance: req.RequiresAttendance != nil && *req.RequiresAttendance,
	}

	created, err := s.repo.CreateAssignment(ctx, assignment, companyID)
	if err != nil {
		return component.AssignmentResponse{}, err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityComponent,
		EntityID:   created.ID,
		Action:     "component_assigned",
		ActorID:    userID,
		NewValues: map[string]any{
			"employee_id":    req.EmployeeID,
			"component_code": c.Code,
			"effective_date": req.EffectiveDate,
		},
		Timestamp: time.Now(),
	})

	return mapAssignmentToResponse(created, c), nil
}

func (s *ComponentServiceImpl) EmployeeAssignments(ctx context.Context, employeeID string) ([]component.AssignmentResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.GetAssignmentsForEmployee(ctx, employeeID, companyID, nil)
	if err != nil {
		return nil, err
	}

	components, err := s.repo.List(ctx, companyID, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]component.SalaryComponent, len(components))
	for _, c := range components {
		byID[c.ID] = c
	}

	result := make([]component.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, mapAssignmentToResponse(a, byID[a.ComponentID]))
	}
	return result, nil
}

func (s *ComponentServiceImpl) EndAssignment(ctx context.Context, id string, endDate string) error {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	parsed, ok := validator.IsValidDate(endDate)
	if !ok {
		return validator.ValidationErrors{{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"}}
	}

	if err := s.repo.EndAssignment(ctx, id, companyID, parsed); err != nil {
		return err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityComponent,
		EntityID:   id,
		Action:     "assignment_ended",
		ActorID:    userID,
		NewValues:  map[string]any{"end_date": endDate},
		Timestamp:  time.Now(),
	})
	return nil
}

func mapToResponse(c component.SalaryComponent) component.ComponentResponse {
	return component.ComponentResponse{
		ID:            c.ID,
		CompanyID:     c.CompanyID,
		Code:          c.Code,
		Name:          c.Name,
		Type:          string(c.Type),
		IsTaxable:     c.IsTaxable,
		IsDeMinimis:   c.IsDeMinimis,
		BasisCode:     c.BasisCode,
		Agency:        c.Agency,
		RateTableKey:  c.RateTableKey,
		DefaultAmount: c.DefaultAmount,
		IsActive:      c.IsActive,
	}
}

func mapAssignmentToResponse(a component.Assignment, c component.SalaryComponent) component.AssignmentResponse {
	var endDate *string
	if a.EndDate != nil {
		str := a.EndDate.Format("2006-01-02")
		endDate = &str
	}

	return component.AssignmentResponse{
		ID:                 a.ID,
		EmployeeID:         a.EmployeeID,
		ComponentID:        a.ComponentID,
		ComponentCode:      c.Code,
		ComponentType:      string(c.Type),
		Amount:             a.Amount,
		Percentage:         a.Percentage,
		Units:              a.Units,
		Frequency:          string(a.Frequency),
		EffectiveDate:      a.EffectiveDate.Format("2006-01-02"),
		EndDate:            endDate,
		IsProrated:         a.IsProrated,
		RequiresAttendance: a.RequiresAttendance,
	}
}
