package memory

import (
	"context"
	"sync"

	"github.com/payrollhq/payroll-engine-go/internal/domain/audit"
)

type AuditStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Record(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *AuditStore) Query(_ context.Context, companyID string, filter audit.Filter) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}

	var matched []audit.Entry
	// Newest first.
	for i := len(s.entries) - 1; i >= 0 && len(matched) < limit; i-- {
		e := s.entries[i]
		if e.CompanyID != companyID {
			continue
		}
		if filter.EntityType != nil && e.EntityType != *filter.EntityType {
			continue
		}
		if filter.EntityID != nil && e.EntityID != *filter.EntityID {
			continue
		}
		if filter.ActorID != nil && e.ActorID != *filter.ActorID {
			continue
		}
		matched = append(matched, e)
	}
	return matched, nil
}

// Actions returns the recorded action names for an entity, oldest first.
// Test helper.
func (s *AuditStore) Actions(entityID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var actions []string
	for _, e := range s.entries {
		if e.EntityID == entityID {
			actions = append(actions, e.Action)
		}
	}
	return actions
}
