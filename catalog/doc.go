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


// Package catalog is the HTTP client for a Mealie-compatible recipe catalog.
//
// The client covers the calls the import pipeline needs:
//   - listing and creating foods, units, categories and tags
//   - fetching, creating and updating recipes by slug
//   - uploading a recipe image
//
// Create calls that fail with 400 or 409 return ErrConflict so callers can
// reload the collection and reuse the existing entity. Any other status outside
// the accepted set is returned as a *StatusError.
//
// A Client is not meant to be shared between workers; create one per worker.
package catalog
