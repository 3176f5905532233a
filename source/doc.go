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


// Package source reads Gousto recipe documents.
//
// A document is the JSON body of a recipe detail response with the recipe
// under data.entry. Load decodes it and the Document methods derive what the
// import needs: the canonical slug, the ingredient entries for a portion
// size, category and tag names, instructions, nutrition and the main image.
package source
