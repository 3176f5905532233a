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


package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/poiesic/mealsync/core"
)

// Recipe is a catalog recipe record. It is kept as a generic document so that
// fields this package does not know about survive a fetch and update cycle.
type Recipe map[string]any

// Client talks to one catalog instance.
type Client struct {
	http    *resty.Client
	perPage int
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets the logger used by the client and its transport.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger.With("component", "catalog-client")
		return nil
	}
}

// NewClient creates a client for the catalog described by cfg.
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		perPage: cfg.PerPage,
		logger:  slog.Default().With("component", "catalog-client"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.http = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.Token).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetLogger(&restyLogger{logger: c.logger})

	return c, nil
}

var collectionPaths = map[core.EntityKind]string{
	core.KindFood:     "/foods",
	core.KindUnit:     "/units",
	core.KindCategory: "/organizers/categories",
	core.KindTag:      "/organizers/tags",
}

func collectionPath(kind core.EntityKind) (string, error) {
	path, ok := collectionPaths[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return path, nil
}

// ListEntities fetches every entity of kind, page by page. Paging stops at
// the first short or empty page, or when a page adds nothing new.
func (c *Client) ListEntities(ctx context.Context, kind core.EntityKind) ([]*core.Entity, error) {
	path, err := collectionPath(kind)
	if err != nil {
		return nil, err
	}

	var entities []*core.Entity
	seen := make(map[string]struct{})
	for page := 1; ; page++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"page":    strconv.Itoa(page),
				"perPage": strconv.Itoa(c.perPage),
			}).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("list %s page %d: %w", kind, page, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, statusError(resp)
		}

		items, err := decodeList(resp.Body())
		if err != nil {
			return nil, fmt.Errorf("list %s page %d: %w", kind, page, err)
		}

		added := 0
		for _, item := range items {
			entity := item.entity()
			if entity.ID != "" {
				if _, dup := seen[entity.ID]; dup {
					continue
				}
				seen[entity.ID] = struct{}{}
			}
			entities = append(entities, entity)
			added++
		}

		c.logger.Debug("listed page", "kind", kind, "page", page, "items", len(items))
		if len(items) < c.perPage || added == 0 {
			break
		}
	}
	return entities, nil
}

// CreateEntity creates an entity of kind named name. A 400 or 409 response
// returns ErrConflict. The returned entity may lack an ID if the catalog does
// not echo one.
func (c *Client) CreateEntity(ctx context.Context, kind core.EntityKind, name string) (*core.Entity, error) {
	path, err := collectionPath(kind)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name}).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", kind, name, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusBadRequest || code == http.StatusConflict:
		return nil, fmt.Errorf("%w: %s %q (%d)", ErrConflict, kind, name, code)
	case code < 200 || code > 299:
		return nil, statusError(resp)
	}

	if len(bytes.TrimSpace(resp.Body())) == 0 {
		return &core.Entity{Name: name}, nil
	}
	var created wireEntity
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, fmt.Errorf("%w: create %s %q: %v", ErrUnexpectedResponse, kind, name, err)
	}
	return created.entity(), nil
}

// GetRecipe fetches the recipe stored under slug. ErrNotFound is returned
// when it does not exist.
func (c *Client) GetRecipe(ctx context.Context, slug string) (Recipe, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		Get("/recipes/{slug}")
	if err != nil {
		return nil, fmt.Errorf("get recipe %s: %w", slug, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, slug)
	default:
		return nil, statusError(resp)
	}

	var recipe Recipe
	if err := json.Unmarshal(resp.Body(), &recipe); err != nil {
		return nil, fmt.Errorf("%w: recipe %s: %v", ErrUnexpectedResponse, slug, err)
	}
	if recipe == nil {
		recipe = Recipe{}
	}
	return recipe, nil
}

// CreateRecipe creates a placeholder recipe named after slug.
func (c *Client) CreateRecipe(ctx context.Context, slug string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": slug, "slug": slug}).
		Post("/recipes")
	if err != nil {
		return fmt.Errorf("create recipe %s: %w", slug, err)
	}
	return checkWrite(resp)
}

// UpdateRecipe replaces the recipe stored under slug.
func (c *Client) UpdateRecipe(ctx context.Context, slug string, recipe Recipe) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		SetBody(recipe).
		Put("/recipes/{slug}")
	if err != nil {
		return fmt.Errorf("update recipe %s: %w", slug, err)
	}
	return checkWrite(resp)
}

// UploadImage sends the image file at path as the recipe's main image.
func (c *Client) UploadImage(ctx context.Context, slug, path string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		SetFile("image", path).
		SetFormData(map[string]string{"extension": ext}).
		Put("/recipes/{slug}/image")
	if err != nil {
		return fmt.Errorf("upload image for %s: %w", slug, err)
	}
	return checkWrite(resp)
}

func checkWrite(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	return statusError(resp)
}

func statusError(resp *resty.Response) error {
	e := &StatusError{
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		e.Path = resp.Request.URL
	}
	return e
}
