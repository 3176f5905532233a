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
	"sync"

	"github.com/poiesic/mealsync/core"
)

// cache maps normalized keys to entities for a single kind.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*core.Entity
	size    int
}

func newCache() *cache {
	return &cache{entries: make(map[string]*core.Entity)}
}

// get returns the entity stored under the first matching key.
func (c *cache) get(keys ...string) (*core.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range keys {
		if e, ok := c.entries[core.NormalizeKey(key)]; ok {
			return e, true
		}
	}
	return nil, false
}

// add stores entities under all of their keys plus any extra aliases.
// Existing keys keep their entity.
func (c *cache) add(entities []*core.Entity, aliases ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entities {
		if e == nil {
			continue
		}
		added := false
		for _, key := range append(e.Keys(), aliases...) {
			key = core.NormalizeKey(key)
			if key == "" {
				continue
			}
			if _, exists := c.entries[key]; exists {
				continue
			}
			c.entries[key] = e
			added = true
		}
		if added {
			c.size++
		}
	}
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}
