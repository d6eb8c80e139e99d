package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarvee/internal/model"
)

func TestMemoryStore_CreateAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	fixed := base
	store.now = func() time.Time { return fixed }

	a, err := store.Create(ctx, &model.Listing{Title: "A", ID: "client-chosen"})
	require.NoError(t, err)
	b, err := store.Create(ctx, &model.Listing{Title: "B"})
	require.NoError(t, err)

	assert.NotEqual(t, "client-chosen", a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, b.CreatedAt.After(a.CreatedAt), "timestamps must be strictly increasing")

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(Filter(all, Query{})))
}

func TestMemoryStore_SeedAndSnapshot(t *testing.T) {
	ctx := context.Background()
	seed := DemoListings(base)
	store := NewMemoryStore(seed)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(seed))

	all[0].Title = "mutated"
	again, _ := store.All(ctx)
	assert.NotEqual(t, "mutated", again[0].Title)

	created, err := store.Create(ctx, &model.Listing{Title: "fresh"})
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.After(seed[0].CreatedAt))
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Create(ctx, &model.Listing{Title: "x"})
		}()
	}
	wg.Wait()

	all, _ := store.All(ctx)
	require.Len(t, all, 20)
	seen := map[time.Time]bool{}
	for _, l := range all {
		assert.False(t, seen[l.CreatedAt])
		seen[l.CreatedAt] = true
	}
}

func TestDemoListings_Valid(t *testing.T) {
	for _, l := range DemoListings(base) {
		assert.True(t, model.IsCategory(l.Category), l.Title)
		assert.True(t, l.Condition.Valid(), l.Title)
		assert.Greater(t, l.Price, 0.0, l.Title)
		assert.True(t, l.CreatedAt.Before(base))
	}
}
