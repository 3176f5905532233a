package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/core"
	"github.com/stretchr/testify/require"
)

// fakeCatalog is an in-memory catalog shared by every client a test creates.
type fakeCatalog struct {
	mu          sync.Mutex
	entities    map[core.EntityKind][]*core.Entity
	recipes     map[string]catalog.Recipe
	creates     map[string]int
	updates     map[string]int
	failUpdates map[string]int
	failUpload  bool
	uploads     []string
	listErr     error
	nextID      int
	clients     int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		entities: map[core.EntityKind][]*core.Entity{
			core.KindUnit: {
				{ID: "unit-gram", Name: "gram", PluralName: "grams", Abbreviation: "g"},
			},
		},
		recipes:     make(map[string]catalog.Recipe),
		creates:     make(map[string]int),
		updates:     make(map[string]int),
		failUpdates: make(map[string]int),
	}
}

func (f *fakeCatalog) factory() ClientFactory {
	return func() (Client, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.clients++
		return f, nil
	}
}

func (f *fakeCatalog) ListEntities(ctx context.Context, kind core.EntityKind) ([]*core.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*core.Entity(nil), f.entities[kind]...), nil
}

func (f *fakeCatalog) CreateEntity(ctx context.Context, kind core.EntityKind, name string) (*core.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := &core.Entity{ID: fmt.Sprintf("%s-%d", kind, f.nextID), Name: name}
	f.entities[kind] = append(f.entities[kind], e)
	f.creates[string(kind)+"/"+core.NormalizeKey(name)]++
	return e, nil
}

func (f *fakeCatalog) GetRecipe(ctx context.Context, slug string) (catalog.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[slug]
	if !ok {
		return nil, fmt.Errorf("%w: recipe %s", catalog.ErrNotFound, slug)
	}
	out := make(catalog.Recipe, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCatalog) CreateRecipe(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipes[slug] = catalog.Recipe{"name": slug, "slug": slug, "id": "recipe-" + slug}
	return nil
}

func (f *fakeCatalog) UpdateRecipe(ctx context.Context, slug string, recipe catalog.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdates[slug] != 0 {
		if f.failUpdates[slug] > 0 {
			f.failUpdates[slug]--
		}
		return &catalog.StatusError{Method: http.MethodPut, Path: "/recipes/" + slug, StatusCode: http.StatusInternalServerError, Body: "boom"}
	}
	f.updates[slug]++
	f.recipes[slug] = recipe
	return nil
}

func (f *fakeCatalog) UploadImage(ctx context.Context, slug, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return &catalog.StatusError{Method: http.MethodPut, Path: "/recipes/" + slug + "/image", StatusCode: http.StatusRequestEntityTooLarge}
	}
	f.uploads = append(f.uploads, slug+"="+filepath.Base(path))
	return nil
}

func (f *fakeCatalog) recipe(slug string) catalog.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipes[slug]
}

func (f *fakeCatalog) createCount(kind core.EntityKind, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates[string(kind)+"/"+core.NormalizeKey(name)]
}

func (f *fakeCatalog) updateCount(slug string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[slug]
}

// testDoc describes a source document written by writeDoc.
type testDoc struct {
	slug        string
	title       string
	ingredients []string
	categories  []string
	image       string
}

// writeDoc writes doc to dir/file and returns its path. An empty slug writes
// a document without a canonical URL.
func writeDoc(t *testing.T, dir, file string, doc testDoc) string {
	t.Helper()

	ingredients := make([]map[string]any, len(doc.ingredients))
	for i, label := range doc.ingredients {
		ingredients[i] = map[string]any{"label": label}
	}
	categories := make([]map[string]any, len(doc.categories))
	for i, title := range doc.categories {
		categories[i] = map[string]any{"title": title}
	}
	entry := map[string]any{
		"title":       doc.title,
		"description": "<p>Tasty.</p>",
		"ingredients": ingredients,
		"categories":  categories,
		"cooking_instructions": []map[string]any{
			{"order": 1, "instruction": "<p>Cook it.</p>"},
		},
	}
	if doc.slug != "" {
		entry["seo"] = map[string]any{"canonical": "https://www.gousto.co.uk/cookbook/" + doc.slug}
	}
	if doc.image != "" {
		entry["media"] = map[string]any{"images": []map[string]any{{"image": "https://cdn.example.com/" + doc.image, "width": 1500}}}
	}

	data, err := json.Marshal(map[string]any{"data": map[string]any{"entry": entry}})
	require.NoError(t, err)
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
