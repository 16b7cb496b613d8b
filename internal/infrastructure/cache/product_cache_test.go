package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingredientlens/backend/internal/domain"
)

// failingStore fails every operation
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errStoreDown
}
func (failingStore) Delete(ctx context.Context, key string) error { return errStoreDown }
func (failingStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return 0, errStoreDown
}
func (failingStore) Ping(ctx context.Context) error { return errStoreDown }

func sampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "2345",
			Name:        "Velvet Lip Stain",
			Brand:       "Glow",
			URL:         "https://shop.example.com/product/velvet",
			Price:       24,
			Ingredients: []string{"Water", "Glycerin"},
			DataTier:    domain.TierDetailed,
			IngredientAnalysis: &domain.IngredientAnalysis{
				Classification: []domain.Classification{
					{Ingredient: "Water", Label: "natural"},
					{Ingredient: "Glycerin", Label: "synthetic"},
				},
				Percentages: domain.Percentages{Natural: 50, Synthetic: 50},
			},
		},
	}
}

func TestProductCache_Key(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	pc := NewProductCache(store, "", 0, zerolog.Nop())

	tests := []struct {
		query string
		want  string
	}{
		{"red lipstick", "product:red lipstick"},
		{"  Red Lipstick ", "product:red lipstick"},
		{"SPF 50", "product:spf 50"},
	}

	for _, tt := range tests {
		if got := pc.Key(tt.query); got != tt.want {
			t.Errorf("Key(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestProductCache_RoundTrip(t *testing.T) {
	stores := map[string]func(t *testing.T) domain.CacheStore{
		"memory": func(t *testing.T) domain.CacheStore {
			s, _ := newTestMemoryStore(t)
			return s
		},
		"redis": func(t *testing.T) domain.CacheStore {
			s, _ := newTestRedisStore(t)
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			pc := NewProductCache(newStore(t), DefaultNamespace, DefaultTTL, zerolog.Nop())
			ctx := context.Background()

			assert.Equal(t, LookupMiss, pc.Get(ctx, "red lipstick").Status)

			pc.Set(ctx, "Red Lipstick", sampleProducts())

			lookup := pc.Get(ctx, "red lipstick")
			require.True(t, lookup.Hit())
			assert.Equal(t, sampleProducts(), lookup.Products)
		})
	}
}

func TestProductCache_Expiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	pc := NewProductCache(store, DefaultNamespace, DefaultTTL, zerolog.Nop())
	ctx := context.Background()

	pc.Set(ctx, "balm", sampleProducts())
	assert.Equal(t, 24*time.Hour, mr.TTL("product:balm"))

	mr.FastForward(23 * time.Hour)
	assert.True(t, pc.Get(ctx, "balm").Hit())

	mr.FastForward(2 * time.Hour)
	assert.Equal(t, LookupMiss, pc.Get(ctx, "balm").Status)
}

func TestProductCache_EmptyListIsAHit(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	pc := NewProductCache(store, DefaultNamespace, DefaultTTL, zerolog.Nop())
	ctx := context.Background()

	pc.Set(ctx, "nothing", nil)

	lookup := pc.Get(ctx, "nothing")
	assert.True(t, lookup.Hit())
	assert.Empty(t, lookup.Products)
}

func TestProductCache_CorruptEntryIsAMiss(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	pc := NewProductCache(store, DefaultNamespace, DefaultTTL, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "product:broken", []byte("{not json"), time.Hour))

	assert.Equal(t, LookupMiss, pc.Get(ctx, "broken").Status)
}

func TestProductCache_Clear(t *testing.T) {
	store, mr := newTestRedisStore(t)
	pc := NewProductCache(store, DefaultNamespace, DefaultTTL, zerolog.Nop())
	ctx := context.Background()

	pc.Set(ctx, "lipstick", sampleProducts())
	pc.Set(ctx, "balm", sampleProducts())

	require.NoError(t, pc.Clear(ctx, " LIPSTICK"))
	assert.False(t, mr.Exists("product:lipstick"))
	assert.True(t, mr.Exists("product:balm"))

	// clearing twice is fine
	require.NoError(t, pc.Clear(ctx, "lipstick"))
}

func TestProductCache_ClearAll(t *testing.T) {
	store, mr := newTestRedisStore(t)
	pc := NewProductCache(store, DefaultNamespace, DefaultTTL, zerolog.Nop())
	ctx := context.Background()

	pc.Set(ctx, "lipstick", sampleProducts())
	pc.Set(ctx, "balm", sampleProducts())
	require.NoError(t, mr.Set("session:abc", "keep"))

	n, err := pc.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, LookupMiss, pc.Get(ctx, "lipstick").Status)
	assert.Equal(t, LookupMiss, pc.Get(ctx, "balm").Status)
	assert.True(t, mr.Exists("session:abc"))

	n, err = pc.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestProductCache_StoreFailuresDegrade(t *testing.T) {
	pc := NewProductCache(failingStore{}, DefaultNamespace, DefaultTTL, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, LookupUnavailable, pc.Get(ctx, "lipstick").Status)
	assert.NotPanics(t, func() { pc.Set(ctx, "lipstick", sampleProducts()) })
	assert.ErrorIs(t, pc.Clear(ctx, "lipstick"), errStoreDown)
	_, err := pc.ClearAll(ctx)
	assert.ErrorIs(t, err, errStoreDown)
	assert.ErrorIs(t, pc.Ping(ctx), errStoreDown)
	assert.Error(t, pc.CheckConnection(ctx))
}

func TestProductCache_LogsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	pc := NewProductCache(failingStore{}, DefaultNamespace, DefaultTTL, zerolog.New(&buf))

	pc.Get(context.Background(), "lipstick")

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	if got := strings.Count(line, `"component"`); got != 1 {
		t.Errorf("component key appears %d times in %s, want 1", got, line)
	}
	assert.Contains(t, line, `"component":"cache"`)
}

func TestProductCache_CheckConnection(t *testing.T) {
	store, mr := newTestRedisStore(t)
	pc := NewProductCache(store, DefaultNamespace, DefaultTTL, zerolog.Nop())

	require.NoError(t, pc.CheckConnection(context.Background()))
	assert.False(t, mr.Exists("test:connection"))
}

func TestLookupStatus_String(t *testing.T) {
	assert.Equal(t, "hit", LookupHit.String())
	assert.Equal(t, "miss", LookupMiss.String())
	assert.Equal(t, "unavailable", LookupUnavailable.String())
}
