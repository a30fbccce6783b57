// Package locker provides the per-period run lock: exactly one calculation
// run may be active for a period at any time. Acquire never blocks - a held
// lock is reported to the caller, who fails fast.
package locker

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/payrollhq/payroll-engine-go/internal/pkg/database"
)

// RunLocker hands out advisory locks keyed on period id.
type RunLocker interface {
	// TryAcquire returns (release, true) when the lock was taken, or
	// (nil, false) when another run holds it.
	TryAcquire(ctx context.Context, periodID string) (release func(), acquired bool, err error)
}

// ========== POSTGRES ADVISORY LOCK ==========

// PGLocker uses pg_try_advisory_lock so mutual exclusion holds across
// processes sharing the database.
type PGLocker struct {
	db *database.DB
}

func NewPGLocker(db *database.DB) *PGLocker {
	return &PGLocker{db: db}
}

func lockKey(periodID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("payroll_run:" + periodID))
	return int64(h.Sum64())
}

func (l *PGLocker) TryAcquire(ctx context.Context, periodID string) (func(), bool, error) {
	// Advisory locks are session-scoped, so the acquire and release must run
	// on the same connection.
	conn, err := l.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection for run lock: %w", err)
	}

	key := lockKey(periodID)
	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		// Unlock with a background context: release must succeed even when
		// the run's context was cancelled.
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", key)
		conn.Release()
	}
	return release, true, nil
}

// ========== IN-PROCESS LOCK ==========

// MemoryLocker serves single-process deployments and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, periodID string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[periodID] {
		return nil, false, nil
	}
	l.held[periodID] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, periodID)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
