package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/payrollhq/payroll-engine-go/internal/domain/ratetable"
)

type RateTableStore struct {
	mu     sync.RWMutex
	tables map[string][]ratetable.RateTable // keyed by table key
}

func NewRateTableStore() *RateTableStore {
	return &RateTableStore{tables: make(map[string][]ratetable.RateTable)}
}

func (s *RateTableStore) Publish(_ context.Context, t ratetable.RateTable) (ratetable.RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tables[t.Key] {
		if windowsOverlap(existing.EffectiveFrom, existing.EffectiveTo, t.EffectiveFrom, t.EffectiveTo) {
			return ratetable.RateTable{}, ratetable.ErrVersionOverlaps
		}
	}

	t.CreatedAt = time.Now()
	s.tables[t.Key] = append(s.tables[t.Key], t)
	sort.Slice(s.tables[t.Key], func(i, j int) bool {
		return s.tables[t.Key][i].EffectiveFrom.Before(s.tables[t.Key][j].EffectiveFrom)
	})
	return t, nil
}

func windowsOverlap(aFrom time.Time, aTo *time.Time, bFrom time.Time, bTo *time.Time) bool {
	if aTo != nil && !bFrom.Before(*aTo) {
		return false
	}
	if bTo != nil && !aFrom.Before(*bTo) {
		return false
	}
	return true
}

func (s *RateTableStore) ResolveVersion(_ context.Context, key string, effective time.Time) (ratetable.RateTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tables[key] {
		if t.Covers(effective) {
			return t, nil
		}
	}
	return ratetable.RateTable{}, fmt.Errorf("no version of %s effective on %s: %w", key, effective.Format("2006-01-02"), ratetable.ErrRateTableNotFound)
}

func (s *RateTableStore) ListVersions(_ context.Context, key string) ([]ratetable.RateTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ratetable.RateTable(nil), s.tables[key]...), nil
}

func (s *RateTableStore) ListKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.tables))
	for key := range s.tables {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
