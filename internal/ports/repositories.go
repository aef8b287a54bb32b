package ports

import (
	"context"

	"trip-tracker/internal/domain/geo"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// KeyValueStore is a durable slot store. Get reports found=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// LocationHistoryRepository defines the methods for archiving accepted device fixes.
type LocationHistoryRepository interface {
	Archive(ctx context.Context, tripID string, fix geo.Fix) error
	Recent(ctx context.Context, tripID string, limit int) ([]geo.Fix, error)
}
