package domain

import (
	"context"
	"time"
)

// CacheStore is the raw key-value store behind the product cache
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Ping(ctx context.Context) error
}

// ProductFetcher retrieves products from the retail site
type ProductFetcher interface {
	SearchProducts(ctx context.Context, query string, page, pageSize int) (*FetchResult, error)
}

// IngredientOracle classifies ingredients and estimates their environmental impact
type IngredientOracle interface {
	ClassifyIngredients(ctx context.Context, ingredients []string) ([]Classification, error)
	AnalyzeEnvironmentalImpact(ctx context.Context, ingredients []string) ([]IngredientImpact, error)
}
