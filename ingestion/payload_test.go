package ingestion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload_KeepsExistingWhenNothingImported(t *testing.T) {
	existing := catalog.Recipe{
		"id":               "r1",
		"name":             "Old name",
		"description":      "Old description",
		"recipeIngredient": []any{"kept"},
		"recipeCategory":   []any{"kept"},
		"tags":             []any{"kept"},
	}

	payload := buildPayload(existing, &recipeFields{slug: "gousto-x"})

	assert.Equal(t, "r1", payload["id"])
	assert.Equal(t, "Old name", payload["name"])
	assert.Equal(t, "Old description", payload["description"])
	assert.Equal(t, []any{"kept"}, payload["recipeIngredient"])
	assert.Equal(t, []any{"kept"}, payload["recipeCategory"])
	assert.Equal(t, []any{"kept"}, payload["tags"])
	assert.NotContains(t, payload, "recipeYield")
	assert.NotContains(t, payload, "orgURL")

	// The existing record itself is not modified.
	assert.Len(t, existing, 6)
}

func TestBuildPayload_NameFallsBackToSlug(t *testing.T) {
	payload := buildPayload(catalog.Recipe{}, &recipeFields{slug: "gousto-x"})
	assert.Equal(t, "gousto-x", payload["name"])
	assert.Equal(t, "", payload["description"])
}

func TestBuildPayload_ImportedFields(t *testing.T) {
	qty := 250.0
	ref := uuid.MustParse("0b6f1b8e-3b7d-4b7e-9a9e-1d2f6c0b1a11")
	fields := &recipeFields{
		slug:        "gousto-katsu",
		name:        "Chicken Katsu Curry",
		description: "Crispy.",
		orgURL:      "https://www.gousto.co.uk/cookbook/katsu",
		ingredients: []core.ResolvedIngredient{
			{
				DisplayText:  "250g rice",
				OriginalText: "250g rice",
				Food:         &core.Entity{ID: "f1", Name: "Rice"},
				Quantity:     &qty,
				Unit:         &core.Entity{ID: "u1", Name: "gram", Abbreviation: "g"},
				ReferenceID:  &ref,
			},
			{
				DisplayText: "Salt",
				Food:        &core.Entity{ID: "f2", Name: "Salt"},
			},
		},
		categories:   []*core.Entity{{ID: "c1", Name: "Quick", Slug: "quick"}, {ID: "c1", Name: "Quick", Slug: "quick"}},
		tags:         []*core.Entity{{ID: "t1", Name: "Gluten"}},
		instructions: []string{"Boil the rice.", "Serve."},
		nutrition:    map[string]string{"calories": "652 kcal"},
		portions:     2,
	}

	payload := buildPayload(catalog.Recipe{"name": "gousto-katsu"}, fields)

	assert.Equal(t, "Chicken Katsu Curry", payload["name"])
	assert.Equal(t, "Crispy.", payload["description"])
	assert.Equal(t, "https://www.gousto.co.uk/cookbook/katsu", payload["orgURL"])
	assert.Equal(t, "2 servings", payload["recipeYield"])
	assert.Equal(t, map[string]string{"calories": "652 kcal"}, payload["nutrition"])

	lines := payload["recipeIngredient"].([]map[string]any)
	require.Len(t, lines, 2)
	assert.Equal(t, ref.String(), lines[0]["referenceId"])
	assert.Equal(t, 250.0, lines[0]["quantity"])
	assert.Equal(t, map[string]any{"id": "u1", "name": "gram", "abbreviation": "g"}, lines[0]["unit"])
	assert.Equal(t, map[string]any{"id": "f1", "name": "Rice"}, lines[0]["food"])

	assert.NotContains(t, lines[1], "quantity")
	assert.Nil(t, lines[1]["unit"])
	_, err := uuid.Parse(lines[1]["referenceId"].(string))
	assert.NoError(t, err, "a reference id is generated when absent")

	categories := payload["recipeCategory"].([]map[string]any)
	assert.Equal(t, []map[string]any{{"id": "c1", "name": "Quick", "slug": "quick"}}, categories)

	steps := payload["recipeInstructions"].([]map[string]any)
	require.Len(t, steps, 2)
	assert.Equal(t, "Boil the rice.", steps[0]["text"])
}
