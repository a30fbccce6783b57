package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type auditTrail struct {
	db *database.DB
}

func NewAuditTrail(db *database.DB) audit.Trail {
	return &auditTrail{db: db}
}

// Record implements audit.Trail. Entries are insert-only; the table carries
// no update or delete path.
func (t *auditTrail) Record(ctx context.Context, e audit.Entry) error {
	q := GetQuerier(ctx, t.db)

	oldValues, err := json.Marshal(e.OldValues)
	if err != nil {
		return fmt.Errorf("failed to marshal old values: %w", err)
	}
	newValues, err := json.Marshal(e.NewValues)
	if err != nil {
		return fmt.Errorf("failed to marshal new values: %w", err)
	}

	query := `
		INSERT INTO audit_entries (
			id, company_id, entity_type, entity_id, action, actor_id, old_values, new_values, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = q.Exec(ctx, query,
		e.ID, e.CompanyID, e.EntityType, e.EntityID, e.Action, e.ActorID, oldValues, newValues, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// Query implements audit.Trail.
func (t *auditTrail) Query(ctx context.Context, companyID string, filter audit.Filter) ([]audit.Entry, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT id, company_id, entity_type, entity_id, action, actor_id, old_values, new_values, timestamp
		FROM audit_entries
		WHERE company_id = $1
	`
	args := []interface{}{companyID}

	if filter.EntityType != nil {
		args = append(args, *filter.EntityType)
		query += " AND entity_type = $" + strconv.Itoa(len(args))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		query += " AND entity_id = $" + strconv.Itoa(len(args))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		query += " AND actor_id = $" + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += " ORDER BY timestamp DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var oldValues, newValues []byte
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.EntityType, &e.EntityID, &e.Action, &e.ActorID, &oldValues, &newValues, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(oldValues) > 0 {
			if err := json.Unmarshal(oldValues, &e.OldValues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal old values: %w", err)
			}
		}
		if len(newValues) > 0 {
			if err := json.Unmarshal(newValues, &e.NewValues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal new values: %w", err)
			}
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
