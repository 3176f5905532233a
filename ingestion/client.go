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
	"context"

	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/registry"
)

// Client is the catalog API used by one worker. *catalog.Client satisfies it.
type Client interface {
	registry.Client

	GetRecipe(ctx context.Context, slug string) (catalog.Recipe, error)
	CreateRecipe(ctx context.Context, slug string) error
	UpdateRecipe(ctx context.Context, slug string, recipe catalog.Recipe) error
	UploadImage(ctx context.Context, slug, path string) error
}

var _ Client = (*catalog.Client)(nil)

// ClientFactory creates a new catalog client. It is called once per worker.
type ClientFactory func() (Client, error)
