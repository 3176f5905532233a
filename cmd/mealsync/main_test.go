package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// fakeMealie serves the subset of the Mealie API the importer uses.
type fakeMealie struct {
	mu       sync.Mutex
	entities map[string][]map[string]any
	recipes  map[string]map[string]any
	nextID   int
}

func newFakeMealie(t *testing.T) (*fakeMealie, *httptest.Server) {
	t.Helper()
	f := &fakeMealie{
		entities: make(map[string][]map[string]any),
		recipes:  make(map[string]map[string]any),
	}

	mux := http.NewServeMux()
	for _, coll := range []string{"/api/foods", "/api/units", "/api/organizers/categories", "/api/organizers/tags"} {
		mux.HandleFunc("GET "+coll, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			items := f.entities[coll]
			if r.URL.Query().Get("page") != "1" {
				items = nil
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": append([]map[string]any{}, items...)})
		})
		mux.HandleFunc("POST "+coll, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			f.nextID++
			entity := map[string]any{"id": fmt.Sprintf("id-%d", f.nextID), "name": body["name"]}
			f.entities[coll] = append(f.entities[coll], entity)
			writeJSON(w, http.StatusCreated, entity)
		})
	}
	mux.HandleFunc("POST /api/recipes", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		slug := body["slug"].(string)
		f.recipes[slug] = map[string]any{"id": "recipe-" + slug, "slug": slug, "name": body["name"]}
		writeJSON(w, http.StatusCreated, slug)
	})
	mux.HandleFunc("GET /api/recipes/{slug}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		recipe, ok := f.recipes[r.PathValue("slug")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, recipe)
	})
	mux.HandleFunc("PUT /api/recipes/{slug}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.recipes[r.PathValue("slug")] = body
		writeJSON(w, http.StatusOK, body)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeMealie) recipe(slug string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipes[slug]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSourceDoc(t *testing.T, dir, file, canonical string, labels ...string) {
	t.Helper()
	ingredients := make([]map[string]any, len(labels))
	for i, label := range labels {
		ingredients[i] = map[string]any{"label": label}
	}
	entry := map[string]any{
		"title":       "Recipe " + file,
		"ingredients": ingredients,
		"categories":  []map[string]any{{"title": "Quick"}},
	}
	if canonical != "" {
		entry["seo"] = map[string]any{"canonical": canonical}
	}
	data, err := json.Marshal(map[string]any{"data": map[string]any{"entry": entry}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), data, 0644))
}

// runApp runs the CLI with args and returns stdout and the exit code passed
// to cli.OsExiter, or -1 when it was not called.
func runApp(t *testing.T, args ...string) (string, int, error) {
	t.Helper()

	exitCode := -1
	oldExiter := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	defer func() { cli.OsExiter = oldExiter }()
	defer slog.SetDefault(slog.Default())

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(append([]string{"mealsync", "--env-file", "", "--log-level", "error"}, args...))
	return stdout.String(), exitCode, err
}

func TestImportCommand(t *testing.T) {
	fake, server := newFakeMealie(t)
	dir := t.TempDir()
	writeSourceDoc(t, dir, "a.json", "https://www.gousto.co.uk/cookbook/soup", "1 onion", "250g flour")
	writeSourceDoc(t, dir, "b.json", "https://www.gousto.co.uk/cookbook/stew/", "2 onions")

	out, code, err := runApp(t, "import",
		"--source-dir", dir,
		"--base-url", server.URL+"/api/",
		"--token", "secret",
		"--workers", "2",
		"--progress=false",
		"--retry-delay", "0s",
	)
	require.NoError(t, err)
	assert.Equal(t, -1, code)

	assert.Contains(t, out, "No errors encountered")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, `unit "gram" not in catalog`)

	soup := fake.recipe("gousto-soup")
	require.NotNil(t, soup)
	assert.Equal(t, "Recipe a.json", soup["name"])
	assert.Equal(t, "recipe-gousto-soup", soup["id"])
	assert.Len(t, soup["recipeIngredient"], 2)
	assert.NotNil(t, fake.recipe("gousto-stew"))
}

func TestImportCommand_FailedDocumentExitsNonZero(t *testing.T) {
	_, server := newFakeMealie(t)
	dir := t.TempDir()
	writeSourceDoc(t, dir, "a.json", "https://www.gousto.co.uk/cookbook/soup", "1 onion")
	writeSourceDoc(t, dir, "b.json", "")

	out, code, err := runApp(t, "import",
		"--source-dir", dir,
		"--base-url", server.URL+"/api",
		"--token", "secret",
		"--progress=false",
		"--max-retries", "1",
		"--retry-delay", "0s",
	)
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, out, "Errors encountered:")
	assert.Contains(t, out, " - b: parsing: canonical identifier missing")
}

func TestImportCommand_Flags(t *testing.T) {
	for _, env := range []string{"MEALIE_BASE_URL", "MEALIE_TOKEN", "GOUSTO_OUTPUT_DIR", "GOUSTO_IMAGES_DIR"} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	t.Run("base-url is required", func(t *testing.T) {
		_, _, err := runApp(t, "import", "--source-dir", t.TempDir(), "--token", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base-url")
	})

	t.Run("settings come from the environment", func(t *testing.T) {
		t.Setenv("GOUSTO_OUTPUT_DIR", filepath.Join(t.TempDir(), "missing"))
		t.Setenv("MEALIE_BASE_URL", "http://localhost:1/api")
		t.Setenv("MEALIE_TOKEN", "x")

		_, _, err := runApp(t, "import")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list source documents")
	})

	t.Run("skip-unchanged needs a ledger", func(t *testing.T) {
		_, _, err := runApp(t, "import", "--source-dir", t.TempDir(), "--base-url", "http://x", "--token", "x", "--skip-unchanged")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--ledger")
	})
}

func TestNamesCommand(t *testing.T) {
	dir := t.TempDir()
	writeSourceDoc(t, dir, "a.json", "https://x/a", "1 onion", "250g flour", "(200g) tin chopped tomatoes")
	writeSourceDoc(t, dir, "b.json", "https://x/b", "2 onion", "100g flour")
	writeSourceDoc(t, dir, "c.json", "https://x/c", "1/2 onion")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))

	out, _, err := runApp(t, "names", "--source-dir", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "    3  Onion", lines[0])
	assert.Equal(t, "    2  Flour", lines[1])
	assert.Equal(t, "    1  Chopped tomatoes (200g)", lines[2])
}

func TestNamesCommand_Remap(t *testing.T) {
	dir := t.TempDir()
	writeSourceDoc(t, dir, "a.json", "https://x/a", "1 onion")
	remap := filepath.Join(t.TempDir(), "remap.json")
	require.NoError(t, os.WriteFile(remap, []byte(`{"1 onion": "Brown onion"}`), 0644))

	out, _, err := runApp(t, "names", "--source-dir", dir, "--remap", remap)
	require.NoError(t, err)
	assert.Equal(t, "    1  Brown onion\n", out)
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	for _, level := range []string{"debug", "info", "WARN", "error"} {
		t.Run(level, func(t *testing.T) {
			_, _, err := runApp(t, "--log-level", level, "names", "--source-dir", t.TempDir())
			assert.NoError(t, err)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, _, err := runApp(t, "--log-level", "verbose", "names", "--source-dir", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestLoadEnv(t *testing.T) {
	assert.NoError(t, loadEnv(""))
	assert.NoError(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MEALSYNC_TEST_VALUE=from-file\n"), 0644))
	t.Setenv("MEALSYNC_TEST_VALUE", "")
	os.Unsetenv("MEALSYNC_TEST_VALUE")

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("MEALSYNC_TEST_VALUE"))
}
