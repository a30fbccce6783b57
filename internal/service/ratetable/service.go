package ratetable

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/domain/ratetable"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

type RateTableServiceImpl struct {
	repo          ratetable.RateTableRepository
	trail         audit.Trail
	lookupTimeout time.Duration
}

func NewRateTableService(repo ratetable.RateTableRepository, trail audit.Trail, lookupTimeout time.Duration) ratetable.AdminService {
	return &RateTableServiceImpl{
		repo:          repo,
		trail:         trail,
		lookupTimeout: lookupTimeout,
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

// Resolve returns the version of key covering effectiveDate. The lookup is
// bounded by the configured timeout so a slow store surfaces as a
// per-employee resolution failure, not a stalled run.
func (s *RateTableServiceImpl) Resolve(ctx context.Context, key string, effectiveDate time.Time) (ratetable.RateTable, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	table, err := s.repo.ResolveVersion(ctx, key, effectiveDate)
	if err != nil {
		return ratetable.RateTable{}, err
	}
	return table, nil
}

func (s *RateTableServiceImpl) Publish(ctx context.Context, req ratetable.PublishRateTableRequest) (ratetable.RateTableResponse, error) {
	if err := req.Validate(); err != nil {
		return ratetable.RateTableResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return ratetable.RateTableResponse{}, err
	}

	effectiveFrom, _ := validator.IsValidDate(req.EffectiveFrom)
	var effectiveTo *time.Time
	if req.EffectiveTo != nil {
		parsed, _ := validator.IsValidDate(*req.EffectiveTo)
		effectiveTo = &parsed
	}

	table := ratetable.RateTable{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Key:           req.Key,
		Agency:        req.Agency,
		Kind:          ratetable.Kind(req.Kind),
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		EmployeeRate:  req.EmployeeRate,
		EmployerRate:  req.EmployerRate,
		EmployeeCap:   req.EmployeeCap,
		EmployerCap:   req.EmployerCap,
		Brackets:      req.Brackets,
	}

	created, err := s.repo.Publish(ctx, table)
	if err != nil {
		return ratetable.RateTableResponse{}, err
	}

	_ = s.trail.Record(ctx, audit.Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  companyID,
		EntityType: audit.EntityRateTable,
		EntityID:   created.ID,
		Action:     "rate_table_published",
		ActorID:    userID,
		NewValues: map[string]any{
			"key":            created.Key,
			"agency":         created.Agency,
			"effective_from": created.EffectiveFrom.Format("2006-01-02"),
		},
		Timestamp: time.Now(),
	})

	return mapToResponse(created), nil
}

func (s *RateTableServiceImpl) ListVersions(ctx context.Context, key string) ([]ratetable.RateTableResponse, error) {
	versions, err := s.repo.ListVersions(ctx, key)
	if err != nil {
		return nil, err
	}

	result := make([]ratetable.RateTableResponse, 0, len(versions))
	for _, v := range versions {
		result = append(result, mapToResponse(v))
	}
	return result, nil
}

func mapToResponse(t ratetable.RateTable) ratetable.RateTableResponse {
	var effectiveTo *string
	if t.EffectiveTo != nil {
		str := t.EffectiveTo.Format("2006-01-02")
		effectiveTo = &str
	}

	return ratetable.RateTableResponse{
		ID:            t.ID,
		Key:           t.Key,
		Agency:        t.Agency,
		Kind:          string(t.Kind),
		EffectiveFrom: t.EffectiveFrom.Format("2006-01-02"),
		EffectiveTo:   effectiveTo,
		EmployeeRate:  t.EmployeeRate,
		EmployerRate:  t.EmployerRate,
		EmployeeCap:   t.EmployeeCap,
		EmployerCap:   t.EmployerCap,
		Brackets:      t.Brackets,
	}
}
