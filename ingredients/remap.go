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


package ingredients

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/mealsync/core"
)

// Remap overrides derived food names. Lookups match the raw name exactly
// first and then by normalized key.
type Remap struct {
	exact      map[string]string
	normalized map[string]string
}

// NewRemap builds a remap from raw name to override name. Blank overrides
// are ignored.
func NewRemap(entries map[string]string) *Remap {
	r := &Remap{
		exact:      make(map[string]string, len(entries)),
		normalized: make(map[string]string, len(entries)),
	}
	for raw, override := range entries {
		override = strings.Join(strings.Fields(override), " ")
		if override == "" {
			continue
		}
		r.exact[raw] = override
		if key := core.NormalizeKey(raw); key != "" {
			if _, exists := r.normalized[key]; !exists {
				r.normalized[key] = override
			}
		}
	}
	return r
}

// LoadRemap reads a flat JSON object of raw name to override name.
func LoadRemap(path string) (*Remap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read remap %s: %w", path, err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRemap, path, err)
	}
	return NewRemap(entries), nil
}

// Lookup returns the override for name, if any.
func (r *Remap) Lookup(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	if override, ok := r.exact[name]; ok {
		return override, true
	}
	override, ok := r.normalized[core.NormalizeKey(name)]
	return override, ok
}

// Len returns the number of overrides.
func (r *Remap) Len() int {
	if r == nil {
		return 0
	}
	return len(r.exact)
}
