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


package ingestion

import (
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/core"
	"github.com/poiesic/mealsync/source"
)

// recipeFields is everything the import contributes to a catalog record.
type recipeFields struct {
	slug         string
	name         string
	description  string
	orgURL       string
	ingredients  []core.ResolvedIngredient
	categories   []*core.Entity
	tags         []*core.Entity
	instructions []string
	nutrition    map[string]string
	portions     int
}

func newRecipeFields(doc *source.Document, slug string, portions int) *recipeFields {
	orgURL := doc.Entry.URL
	if orgURL == "" {
		orgURL = doc.Entry.SEO.Canonical
	}
	return &recipeFields{
		slug:         slug,
		name:         doc.Name(),
		description:  doc.Description(),
		orgURL:       orgURL,
		instructions: doc.Instructions(),
		nutrition:    doc.Nutrition(),
		portions:     portions,
	}
}

// buildPayload overlays the imported fields on the existing record. Fields
// with nothing to contribute keep their existing value.
func buildPayload(existing catalog.Recipe, f *recipeFields) catalog.Recipe {
	payload := make(catalog.Recipe, len(existing)+9)
	maps.Copy(payload, existing)

	payload["name"] = firstNonEmpty(f.name, stringField(existing, "name"), f.slug)
	payload["description"] = firstNonEmpty(f.description, stringField(existing, "description"))

	if f.orgURL != "" {
		payload["orgURL"] = f.orgURL
	}
	if len(f.ingredients) > 0 {
		payload["recipeIngredient"] = ingredientPayload(f.ingredients)
	}
	if len(f.categories) > 0 {
		payload["recipeCategory"] = organizerPayload(f.categories)
	}
	if len(f.tags) > 0 {
		payload["tags"] = organizerPayload(f.tags)
	}
	if len(f.instructions) > 0 {
		steps := make([]map[string]any, len(f.instructions))
		for i, text := range f.instructions {
			steps[i] = map[string]any{
				"id":                   uuid.NewString(),
				"title":                "",
				"text":                 text,
				"ingredientReferences": []any{},
			}
		}
		payload["recipeInstructions"] = steps
	}
	if len(f.nutrition) > 0 {
		payload["nutrition"] = f.nutrition
	}
	if f.portions > 0 {
		payload["recipeYield"] = fmt.Sprintf("%d servings", f.portions)
	}
	return payload
}

func ingredientPayload(list []core.ResolvedIngredient) []map[string]any {
	out := make([]map[string]any, len(list))
	for i, ing := range list {
		ref := uuid.New()
		if ing.ReferenceID != nil {
			ref = *ing.ReferenceID
		}
		item := map[string]any{
			"referenceId":  ref.String(),
			"display":      ing.DisplayText,
			"originalText": ing.OriginalText,
			"note":         "",
			"food":         entityRef(ing.Food),
			"unit":         nil,
		}
		if ing.Quantity != nil {
			item["quantity"] = *ing.Quantity
		}
		if ing.Unit != nil {
			unit := entityRef(ing.Unit)
			if ing.Unit.Abbreviation != "" {
				unit["abbreviation"] = ing.Unit.Abbreviation
			}
			item["unit"] = unit
		}
		out[i] = item
	}
	return out
}

func organizerPayload(entities []*core.Entity) []map[string]any {
	out := make([]map[string]any, 0, len(entities))
	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		ref := entityRef(e)
		if e.Slug != "" {
			ref["slug"] = e.Slug
		}
		out = append(out, ref)
	}
	return out
}

func entityRef(e *core.Entity) map[string]any {
	return map[string]any{"id": e.ID, "name": e.Name}
}

func stringField(r catalog.Recipe, key string) string {
	s, _ := r[key].(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
