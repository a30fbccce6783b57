package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payroll-engine-go/internal/domain/ratetable"
	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

type rateTableRepository struct {
	db *database.DB
}

func NewRateTableRepository(db *database.DB) ratetable.RateTableRepository {
	return &rateTableRepository{db: db}
}

const rateTableColumns = `
	id, key, agency, kind, effective_from, effective_to,
	employee_rate, employer_rate, employee_cap, employer_cap, brackets, created_at
`

func scanRateTable(row pgx.Row) (ratetable.RateTable, error) {
	var t ratetable.RateTable
	var brackets []byte
	err := row.Scan(
		&t.ID, &t.Key, &t.Agency, &t.Kind, &t.EffectiveFrom, &t.EffectiveTo,
		&t.EmployeeRate, &t.EmployerRate, &t.EmployeeCap, &t.EmployerCap, &brackets, &t.CreatedAt,
	)
	if err != nil {
		return ratetable.RateTable{}, err
	}
	if len(brackets) > 0 {
		if err := json.Unmarshal(brackets, &t.Brackets); err != nil {
			return ratetable.RateTable{}, fmt.Errorf("failed to unmarshal brackets: %w", err)
		}
	}
	return t, nil
}

// Publish implements ratetable.RateTableRepository. The insert is guarded
// against an effective window that overlaps an existing version of the key.
func (r *rateTableRepository) Publish(ctx context.Context, t ratetable.RateTable) (ratetable.RateTable, error) {
	q := GetQuerier(ctx, r.db)

	brackets, err := json.Marshal(t.Brackets)
	if err != nil {
		return ratetable.RateTable{}, fmt.Errorf("failed to marshal brackets: %w", err)
	}

	query := `
		INSERT INTO rate_tables (
			id, key, agency, kind, effective_from, effective_to,
			employee_rate, employer_rate, employee_cap, employer_cap, brackets
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE NOT EXISTS (
			SELECT 1 FROM rate_tables existing
			WHERE existing.key = $2
			  AND ($6::date IS NULL OR existing.effective_from < $6)
			  AND (existing.effective_to IS NULL OR existing.effective_to > $5)
		)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		t.ID, t.Key, t.Agency, t.Kind, t.EffectiveFrom, t.EffectiveTo,
		t.EmployeeRate, t.EmployerRate, t.EmployeeCap, t.EmployerCap, brackets,
	).Scan(&t.CreatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return ratetable.RateTable{}, ratetable.ErrVersionOverlaps
		}
		return ratetable.RateTable{}, fmt.Errorf("failed to publish rate table: %w", err)
	}

	return t, nil
}

// ResolveVersion implements ratetable.RateTableRepository.
func (r *rateTableRepository) ResolveVersion(ctx context.Context, key string, effective time.Time) (ratetable.RateTable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + rateTableColumns + `
		FROM rate_tables
		WHERE key = $1
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to > $2)
		ORDER BY effective_from DESC
		LIMIT 1
	`

	t, err := scanRateTable(q.QueryRow(ctx, query, key, effective))
	if err != nil {
		if err == pgx.ErrNoRows {
			return ratetable.RateTable{}, fmt.Errorf("no version of %s effective on %s: %w", key, effective.Format("2006-01-02"), ratetable.ErrRateTableNotFound)
		}
		return ratetable.RateTable{}, fmt.Errorf("failed to resolve rate table version: %w", err)
	}

	return t, nil
}

// ListVersions implements ratetable.RateTableRepository.
func (r *rateTableRepository) ListVersions(ctx context.Context, key string) ([]ratetable.RateTable, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + rateTableColumns + ` FROM rate_tables WHERE key = $1 ORDER BY effective_from`

	rows, err := q.Query(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate table versions: %w", err)
	}
	defer rows.Close()

	var versions []ratetable.RateTable
	for rows.Next() {
		t, err := scanRateTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate table: %w", err)
		}
		versions = append(versions, t)
	}

	return versions, rows.Err()
}

// ListKeys implements ratetable.RateTableRepository.
func (r *rateTableRepository) ListKeys(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT key FROM rate_tables ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate table keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan rate table key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
