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
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/mealsync/core"
	"github.com/poiesic/mealsync/foodname"
	"github.com/poiesic/mealsync/quantity"
)

// Resolver maps names to catalog entities. registry.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, kind core.EntityKind, name string) (*core.Entity, error)
	Lookup(kind core.EntityKind, names ...string) (*core.Entity, bool)
}

// Result is the merged ingredient list of one recipe plus the non-fatal
// problems found while building it.
type Result struct {
	Ingredients []core.ResolvedIngredient
	Warnings    []string
}

// Merger resolves and deduplicates ingredient entries. It holds no per-recipe
// state and may be shared between workers.
type Merger struct {
	parser      *quantity.Parser
	remap       *Remap
	createUnits bool
	logger      *slog.Logger
}

// Option configures a Merger.
type Option func(*Merger) error

// WithRemap sets food name overrides.
func WithRemap(remap *Remap) Option {
	return func(m *Merger) error {
		m.remap = remap
		return nil
	}
}

// WithCreateUnits makes unknown unit tokens be created in the catalog instead
// of being dropped with a warning.
func WithCreateUnits(create bool) Option {
	return func(m *Merger) error {
		m.createUnits = create
		return nil
	}
}

// WithLogger sets the logger for the merger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) error {
		m.logger = logger.With("component", "ingredient-merger")
		return nil
	}
}

// NewMerger creates a merger with the standard parser.
func NewMerger(opts ...Option) (*Merger, error) {
	m := &Merger{
		parser: quantity.NewParser(),
		logger: slog.Default().With("component", "ingredient-merger"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Merge resolves every entry and merges entries naming the same food with
// compatible units. Output order is first occurrence order. A resolution
// failure or an invalid line aborts the merge; everything else is reported
// as a warning.
func (m *Merger) Merge(ctx context.Context, resolver Resolver, entries []core.IngredientEntry) (Result, error) {
	if resolver == nil {
		return Result{}, ErrResolverRequired
	}

	var result Result
	for i, entry := range entries {
		ing, warnings, err := m.resolve(ctx, resolver, entry)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			return Result{Warnings: result.Warnings}, fmt.Errorf("ingredient %d: %w", i+1, err)
		}
		if ing == nil {
			continue
		}
		if err := core.ValidateIngredient(ing); err != nil {
			return Result{Warnings: result.Warnings}, fmt.Errorf("ingredient %d: %w", i+1, err)
		}
		result.Ingredients = mergeInto(result.Ingredients, *ing)
	}
	return result, nil
}

func (m *Merger) resolve(ctx context.Context, resolver Resolver, entry core.IngredientEntry) (*core.ResolvedIngredient, []string, error) {
	var warnings []string
	display := displayText(entry.Item)
	if display == "" {
		return nil, []string{"skipped ingredient with no label or name"}, nil
	}

	name, ok := m.foodName(entry.Item, display)
	if !ok {
		return nil, []string{fmt.Sprintf("%q: no food name left after cleaning", display)}, nil
	}

	food, err := resolver.Resolve(ctx, core.KindFood, name)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve food %q: %w", name, err)
	}

	parsed := m.parser.Parse(display)
	unit, warning, err := m.unit(ctx, resolver, parsed.Unit)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve unit %q: %w", parsed.Unit, err)
	}
	if warning != "" {
		warnings = append(warnings, fmt.Sprintf("%q: %s", display, warning))
	}

	original := entry.Item.Label
	if original == "" {
		original = display
	}

	ing := &core.ResolvedIngredient{
		DisplayText:  display,
		OriginalText: original,
		FoodKey:      core.NormalizeKey(name),
		Food:         food,
		Quantity:     finalQuantity(parsed, entry.Sku),
		Unit:         unit,
	}
	if id, err := uuid.Parse(entry.Item.UID); err == nil {
		ing.ReferenceID = &id
	}

	m.logger.Debug("resolved ingredient", "label", display, "food", name, "unit", parsed.Unit)
	return ing, warnings, nil
}

// FoodName returns the canonical food name the merger would resolve for item.
func (m *Merger) FoodName(item core.RawIngredientItem) (string, bool) {
	display := displayText(item)
	if display == "" {
		return "", false
	}
	return m.foodName(item, display)
}

func displayText(item core.RawIngredientItem) string {
	if display := item.DisplayLabel(); display != "" {
		return display
	}
	return item.FallbackName()
}

// foodName applies the remap to the label and the raw name before falling
// back to normalization.
func (m *Merger) foodName(item core.RawIngredientItem, display string) (string, bool) {
	for _, raw := range []string{display, item.FallbackName()} {
		if raw == "" {
			continue
		}
		if override, ok := m.remap.Lookup(raw); ok {
			return override, true
		}
	}
	return foodname.Normalize(display, item.FallbackName())
}

// unit maps a canonical unit token to a catalog unit. Unknown tokens give a
// warning unless unit creation is enabled.
func (m *Merger) unit(ctx context.Context, resolver Resolver, token string) (*core.Entity, string, error) {
	if token == "" {
		return nil, "", nil
	}
	if unit, ok := resolver.Lookup(core.KindUnit, quantity.Aliases(token)...); ok {
		return unit, "", nil
	}
	if !m.createUnits {
		return nil, fmt.Sprintf("unit %q not in catalog, ignored", token), nil
	}
	unit, err := resolver.Resolve(ctx, core.KindUnit, token)
	if err != nil {
		return nil, "", err
	}
	return unit, "", nil
}

// finalQuantity applies at most one multiplier to the parsed amount. A
// multiplier from the label wins over the SKU box quantity. When only a
// multiplier is known the base is taken as 1.
func finalQuantity(parsed core.ParsedQuantity, sku *core.PortionSku) *float64 {
	factor := parsed.Multiplier
	if factor == nil {
		factor = sku.Multiplier()
	}

	var q float64
	switch {
	case parsed.Amount != nil && factor != nil:
		q = *parsed.Amount * *factor
	case parsed.Amount != nil:
		q = *parsed.Amount
	case factor != nil:
		q = *factor
	case sku != nil && sku.Quantities.InBox > 0:
		q = sku.Quantities.InBox
	default:
		return nil
	}
	if q < 0 {
		return nil
	}
	return &q
}

// mergeInto folds ing into list, summing quantities with the first entry that
// shares its food key and has a compatible unit.
func mergeInto(list []core.ResolvedIngredient, ing core.ResolvedIngredient) []core.ResolvedIngredient {
	for i := range list {
		existing := &list[i]
		if existing.FoodKey != ing.FoodKey || !core.UnitsCompatible(existing.Unit, ing.Unit) {
			continue
		}
		existing.Quantity = sumQuantities(existing.Quantity, ing.Quantity)
		if existing.ReferenceID == nil {
			existing.ReferenceID = ing.ReferenceID
		}
		return list
	}
	return append(list, ing)
}

func sumQuantities(a, b *float64) *float64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := *a + *b
	return &v
}
