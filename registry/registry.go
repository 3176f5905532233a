// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/core"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Client is the part of the catalog API the registry uses.
type Client interface {
	ListEntities(ctx context.Context, kind core.EntityKind) ([]*core.Entity, error)
	CreateEntity(ctx context.Context, kind core.EntityKind, name string) (*core.Entity, error)
}

// Registry owns the per-kind entity caches for a run.
type Registry struct {
	caches map[core.EntityKind]*cache
	group  singleflight.Group
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry) error

// WithLogger sets the logger for the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		r.logger = logger.With("component", "registry")
		return nil
	}
}

// New creates an empty registry tracking every core.EntityKinds kind.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		caches: make(map[core.EntityKind]*cache, len(core.EntityKinds)),
		logger: slog.Default().With("component", "registry"),
	}
	for _, kind := range core.EntityKinds {
		r.caches[kind] = newCache()
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) cache(kind core.EntityKind) (*cache, error) {
	c, ok := r.caches[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c, nil
}

// Preload fetches every kind from the catalog concurrently and fills the
// caches. Any failure is returned; the caches should then not be used.
func (r *Registry) Preload(ctx context.Context, client Client) error {
	if client == nil {
		return ErrClientRequired
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range core.EntityKinds {
		c := r.caches[kind]
		g.Go(func() error {
			entities, err := client.ListEntities(gctx, kind)
			if err != nil {
				return fmt.Errorf("preload %s: %w", kind, err)
			}
			c.add(entities)
			r.logger.Info("preloaded entities", "kind", kind, "count", c.len())
			return nil
		})
	}
	return g.Wait()
}

// Len returns the number of distinct entities cached for kind.
func (r *Registry) Len(kind core.EntityKind) int {
	c, err := r.cache(kind)
	if err != nil {
		return 0
	}
	return c.len()
}

// Bind returns a resolver that uses client for remote calls.
func (r *Registry) Bind(client Client) *Resolver {
	return &Resolver{registry: r, client: client}
}

// Resolver resolves names against the shared registry using one worker's
// client. It must not be shared between workers.
type Resolver struct {
	registry *Registry
	client   Client
}

// Lookup returns the cached entity matching any of names. It never calls the
// catalog.
func (r *Resolver) Lookup(kind core.EntityKind, names ...string) (*core.Entity, bool) {
	c, err := r.registry.cache(kind)
	if err != nil {
		return nil, false
	}
	return c.get(names...)
}

// Resolve returns the entity of kind named name, creating it in the catalog
// when it is not cached. Concurrent calls for the same name share a single
// create. A conflicting create reloads the collection and retries the lookup.
func (r *Resolver) Resolve(ctx context.Context, kind core.EntityKind, name string) (*core.Entity, error) {
	key := core.NormalizeKey(name)
	if key == "" {
		return nil, fmt.Errorf("resolve %s: %w", kind, core.ErrEmptyName)
	}
	c, err := r.registry.cache(kind)
	if err != nil {
		return nil, err
	}

	if e, ok := c.get(key); ok {
		return e, nil
	}

	v, err, _ := r.registry.group.Do(string(kind)+"/"+key, func() (any, error) {
		return r.create(ctx, kind, c, key, strings.Join(strings.Fields(name), " "))
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Entity), nil
}

func (r *Resolver) create(ctx context.Context, kind core.EntityKind, c *cache, key, name string) (*core.Entity, error) {
	// Another flight may have finished between the miss and this call.
	if e, ok := c.get(key); ok {
		return e, nil
	}
	if r.client == nil {
		return nil, ErrClientRequired
	}

	logger := r.registry.logger.With("kind", kind, "name", name)
	created, err := r.client.CreateEntity(ctx, kind, name)
	switch {
	case err == nil && created != nil && created.ID != "":
		c.add([]*core.Entity{created}, key)
		logger.Debug("created entity", "id", created.ID)
		return created, nil
	case err == nil:
		logger.Debug("create returned no id, reloading")
	case errors.Is(err, catalog.ErrConflict):
		logger.Debug("create conflicted, reloading")
	default:
		return nil, fmt.Errorf("create %s %q: %w", kind, name, err)
	}

	entities, err := r.client.ListEntities(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("reload %s: %w", kind, err)
	}
	c.add(entities)

	if e, ok := c.get(key); ok {
		return e, nil
	}

	// Units must carry a remote id, so only other kinds fall back to the
	// create response.
	if created != nil && kind != core.KindUnit {
		c.add([]*core.Entity{created}, key)
		logger.Debug("reload missed, caching create response")
		return created, nil
	}
	return nil, fmt.Errorf("%w: %s %q", ErrUnresolved, kind, name)
}
