package ratetable

import (
	"context"
	"time"
)

// RateTableRepository persists versioned statutory tables. Publish is the
// only write; versions are never updated or deleted.
type RateTableRepository interface {
	Publish(ctx context.Context, t RateTable) (RateTable, error)

	// ResolveVersion returns the version of key effective on the date.
	ResolveVersion(ctx context.Context, key string, effective time.Time) (RateTable, error)

	ListVersions(ctx context.Context, key string) ([]RateTable, error)
	ListKeys(ctx context.Context) ([]string, error)
}
