package ratetable

import (
	"context"
	"time"
)

// Provider resolves the statutory table version effective on a date.
type Provider interface {
	Resolve(ctx context.Context, key string, effectiveDate time.Time) (RateTable, error)
}

// AdminService publishes and lists versions on the control surface.
type AdminService interface {
	Provider
	Publish(ctx context.Context, req PublishRateTableRequest) (RateTableResponse, error)
	ListVersions(ctx context.Context, key string) ([]RateTableResponse, error)
}
