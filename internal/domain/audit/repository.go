package audit

import "context"

// Trail is the append-only audit log. No update or delete methods exist.
type Trail interface {
	Record(ctx context.Context, e Entry) error
	Query(ctx context.Context, companyID string, filter Filter) ([]Entry, error)
}

type Filter struct {
	EntityType *string
	EntityID   *string
	ActorID    *string
	Limit      int
}
