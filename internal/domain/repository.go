package domain

import (
	"context"
	"time"
)

// InternalStore defines the interface for the application's own product store.
// Records come back already in the canonical schema.
type InternalStore interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	Filter(ctx context.Context, criteria SearchCriteria) ([]Product, error)
}

// ExternalCatalog defines the interface for the Open Food Facts API.
// Network-backed; calls may fail or time out.
type ExternalCatalog interface {
	GetByCode(ctx context.Context, code string) (*ExternalProductRaw, error)
	SearchBroadFood(ctx context.Context) ([]ExternalProductRaw, error)
	SearchSimilar(ctx context.Context, criteria SearchCriteria) ([]ExternalProductRaw, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
