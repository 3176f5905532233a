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


package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/poiesic/mealsync/core"
)

// SlugPrefix is prepended to the last segment of the canonical URL.
const SlugPrefix = "gousto-"

// Titled is a category, cuisine, tag or allergen reference.
type Titled struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Label returns the title, or the slug when the title is blank.
func (t Titled) Label() string {
	if title := collapse(t.Title); title != "" {
		return title
	}
	return collapse(t.Slug)
}

// Instruction is one cooking step.
type Instruction struct {
	Order       int        `json:"order"`
	Instruction string     `json:"instruction"`
	Media       core.Media `json:"media"`
}

// PortionSize lists the ingredient SKUs shipped for a number of portions.
type PortionSize struct {
	Portions       int               `json:"portions"`
	IngredientSkus []core.PortionSku `json:"ingredients_skus"`
}

// PerPortion holds nutrition values per portion. Masses are in milligrams.
type PerPortion struct {
	EnergyKcal     *float64 `json:"energy_kcal"`
	CarbsMg        *float64 `json:"carbs_mg"`
	CarbsSugarsMg  *float64 `json:"carbs_sugars_mg"`
	FatMg          *float64 `json:"fat_mg"`
	FatSaturatesMg *float64 `json:"fat_saturates_mg"`
	FibreMg        *float64 `json:"fibre_mg"`
	ProteinMg      *float64 `json:"protein_mg"`
	SaltMg         *float64 `json:"salt_mg"`
}

// Entry is the recipe record under data.entry.
type Entry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	SEO         struct {
		Canonical string `json:"canonical"`
	} `json:"seo"`
	Ingredients         []core.RawIngredientItem `json:"ingredients"`
	Basics              []core.RawIngredientItem `json:"basics"`
	CookingInstructions []Instruction            `json:"cooking_instructions"`
	Categories          []Titled                 `json:"categories"`
	Cuisine             Titled                   `json:"cuisine"`
	Tags                []Titled                 `json:"tags"`
	Allergens           []Titled                 `json:"allergens"`
	PortionSizes        []PortionSize            `json:"portion_sizes"`
	Media               core.Media               `json:"media"`
	Nutrition           struct {
		PerPortion PerPortion `json:"per_portion"`
	} `json:"nutritional_information"`
}

// Document is a decoded source file.
type Document struct {
	Path        string
	Fingerprint core.ID
	Entry       Entry
}

type envelope struct {
	Data struct {
		Entry *Entry `json:"entry"`
	} `json:"data"`
}

// Load reads and decodes the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableDocument, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes a document body.
func Parse(data []byte) (*Document, error) {
	var env envelope
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableDocument, err)
	}
	if env.Data.Entry == nil {
		return nil, fmt.Errorf("%w: data.entry missing", core.ErrUnreadableDocument)
	}
	return &Document{
		Fingerprint: core.IDFromContent(data),
		Entry:       *env.Data.Entry,
	}, nil
}

// List returns the JSON files in dir in lexical order.
func List(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
