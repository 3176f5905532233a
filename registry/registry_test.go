package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory catalog. Entities added with hidden are only
// visible to ListEntities after the first create of that kind, which mimics
// entities created by another process after the preload.
type fakeClient struct {
	mu        sync.Mutex
	entities  map[core.EntityKind][]*core.Entity
	hidden    map[core.EntityKind][]*core.Entity
	listErr   map[core.EntityKind]error
	createErr error
	noID      bool
	unlisted  bool
	creates   int
	lists     int
	delay     time.Duration
	nextID    int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		entities: make(map[core.EntityKind][]*core.Entity),
		hidden:   make(map[core.EntityKind][]*core.Entity),
		listErr:  make(map[core.EntityKind]error),
	}
}

func (f *fakeClient) ListEntities(_ context.Context, kind core.EntityKind) ([]*core.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if err := f.listErr[kind]; err != nil {
		return nil, err
	}
	out := make([]*core.Entity, len(f.entities[kind]))
	copy(out, f.entities[kind])
	return out, nil
}

func (f *fakeClient) CreateEntity(_ context.Context, kind core.EntityKind, name string) (*core.Entity, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++

	if len(f.hidden[kind]) > 0 {
		f.entities[kind] = append(f.entities[kind], f.hidden[kind]...)
		f.hidden[kind] = nil
	}
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextID++
	e := &core.Entity{ID: fmt.Sprintf("%s-%d", kind, f.nextID), Name: name}
	if !f.unlisted {
		f.entities[kind] = append(f.entities[kind], e)
	}
	if f.noID {
		return &core.Entity{Name: name}, nil
	}
	return e, nil
}

func (f *fakeClient) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func newTestRegistry(t *testing.T, client *fakeClient) *Registry {
	t.Helper()
	reg, err := New()
	require.NoError(t, err)
	require.NoError(t, reg.Preload(context.Background(), client))
	return reg
}

func TestPreload(t *testing.T) {
	client := newFakeClient()
	client.entities[core.KindFood] = []*core.Entity{{ID: "f1", Name: "Onion", Slug: "onion"}}
	client.entities[core.KindUnit] = []*core.Entity{{ID: "u1", Name: "gram", PluralName: "grams", Abbreviation: "g"}}
	client.entities[core.KindCategory] = []*core.Entity{{ID: "c1", Name: "Italian", Slug: "italian"}}
	client.entities[core.KindTag] = []*core.Entity{{ID: "t1", Name: "Gluten Free", Slug: "gluten-free"}}

	reg := newTestRegistry(t, client)
	resolver := reg.Bind(client)

	for _, kind := range core.EntityKinds {
		assert.Equal(t, 1, reg.Len(kind), kind)
	}
	assert.Equal(t, 4, client.lists)

	unit, ok := resolver.Lookup(core.KindUnit, "G")
	require.True(t, ok)
	assert.Equal(t, "u1", unit.ID)

	tag, ok := resolver.Lookup(core.KindTag, "gluten-free")
	require.True(t, ok)
	assert.Equal(t, "t1", tag.ID)

	_, ok = resolver.Lookup(core.KindUnit, "tablespoon", "tbsp")
	assert.False(t, ok)
	assert.Zero(t, client.createCount(), "lookup never creates")
}

func TestPreload_Failure(t *testing.T) {
	client := newFakeClient()
	client.listErr[core.KindTag] = errors.New("connection refused")

	reg, err := New()
	require.NoError(t, err)

	err = reg.Preload(context.Background(), client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preload tag")

	assert.ErrorIs(t, reg.Preload(context.Background(), nil), ErrClientRequired)
}

func TestResolve_CacheHit(t *testing.T) {
	client := newFakeClient()
	client.entities[core.KindFood] = []*core.Entity{{ID: "f1", Name: "Red Onion"}}
	resolver := newTestRegistry(t, client).Bind(client)

	e, err := resolver.Resolve(context.Background(), core.KindFood, "  red   ONION ")
	require.NoError(t, err)
	assert.Equal(t, "f1", e.ID)
	assert.Zero(t, client.createCount())
}

func TestResolve_Idempotent(t *testing.T) {
	client := newFakeClient()
	resolver := newTestRegistry(t, client).Bind(client)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, core.KindFood, "Garlic")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, core.KindFood, "garlic")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, client.createCount(), "second resolve must hit the cache")
}

func TestResolve_ConcurrentCreatesCollapse(t *testing.T) {
	client := newFakeClient()
	client.delay = 20 * time.Millisecond
	reg := newTestRegistry(t, client)

	const workers = 8
	results := make([]*core.Entity, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := reg.Bind(client).Resolve(context.Background(), core.KindTag, "Quick")
			assert.NoError(t, err)
			results[i] = e
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, client.createCount())
	for _, e := range results {
		assert.Same(t, results[0], e)
	}
}

func TestResolve_ConflictReloads(t *testing.T) {
	client := newFakeClient()
	existing := &core.Entity{ID: "f9", Name: "Basmati rice"}
	client.hidden[core.KindFood] = []*core.Entity{existing}
	client.createErr = fmt.Errorf("%w: food %q (409)", catalog.ErrConflict, "Basmati rice")
	resolver := newTestRegistry(t, client).Bind(client)

	e, err := resolver.Resolve(context.Background(), core.KindFood, "Basmati Rice")
	require.NoError(t, err)
	assert.Equal(t, "f9", e.ID)

	again, err := resolver.Resolve(context.Background(), core.KindFood, "basmati rice")
	require.NoError(t, err)
	assert.Same(t, e, again)
	assert.Equal(t, 1, client.createCount())
}

func TestResolve_ConflictStillMissing(t *testing.T) {
	client := newFakeClient()
	client.createErr = catalog.ErrConflict
	resolver := newTestRegistry(t, client).Bind(client)

	_, err := resolver.Resolve(context.Background(), core.KindCategory, "Thai")
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestResolve_CreateWithoutIDReloads(t *testing.T) {
	client := newFakeClient()
	client.noID = true
	resolver := newTestRegistry(t, client).Bind(client)

	e, err := resolver.Resolve(context.Background(), core.KindCategory, "Thai")
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Thai", e.Name)
}

func TestResolve_CreateResponseCachedWhenReloadMisses(t *testing.T) {
	client := newFakeClient()
	client.noID = true
	client.unlisted = true
	resolver := newTestRegistry(t, client).Bind(client)

	e, err := resolver.Resolve(context.Background(), core.KindCategory, "Thai")
	require.NoError(t, err)
	assert.Equal(t, "Thai", e.Name)
	assert.Empty(t, e.ID)

	again, err := resolver.Resolve(context.Background(), core.KindCategory, "thai")
	require.NoError(t, err)
	assert.Same(t, e, again)
	assert.Equal(t, 1, client.createCount())
}

func TestResolve_UnitWithoutIDNotCached(t *testing.T) {
	client := newFakeClient()
	client.noID = true
	client.unlisted = true
	resolver := newTestRegistry(t, client).Bind(client)

	_, err := resolver.Resolve(context.Background(), core.KindUnit, "punnet")
	assert.ErrorIs(t, err, ErrUnresolved)

	_, ok := resolver.Lookup(core.KindUnit, "punnet")
	assert.False(t, ok)
}

func TestResolve_CreateFailure(t *testing.T) {
	client := newFakeClient()
	failure := &catalog.StatusError{Method: "POST", Path: "/foods", StatusCode: 500}
	client.createErr = failure
	resolver := newTestRegistry(t, client).Bind(client)

	_, err := resolver.Resolve(context.Background(), core.KindFood, "Leek")
	var statusErr *catalog.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)

	client.createErr = nil
	e, err := resolver.Resolve(context.Background(), core.KindFood, "Leek")
	require.NoError(t, err, "failures are not cached")
	assert.Equal(t, "Leek", e.Name)
}

func TestResolve_InvalidInput(t *testing.T) {
	client := newFakeClient()
	resolver := newTestRegistry(t, client).Bind(client)

	_, err := resolver.Resolve(context.Background(), core.KindFood, "   ")
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = resolver.Resolve(context.Background(), core.EntityKind("widget"), "x")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
