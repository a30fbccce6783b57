package ratetable

import "errors"

var (
	ErrRateTableNotFound = errors.New("no rate table version covers the effective date")
	ErrVersionOverlaps   = errors.New("rate table version overlaps an existing version for this key")
	ErrTableImmutable    = errors.New("published rate tables are immutable, publish a new version")
)
