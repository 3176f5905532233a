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
	"fmt"
	"math"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/mealsync/core"
	"golang.org/x/net/html"
)

// preferredImageWidth is the rendition downloaded as the main image.
const preferredImageWidth = 1500

// Slug returns the catalog slug derived from the canonical URL.
func (d *Document) Slug() (string, error) {
	canonical := strings.TrimRight(strings.TrimSpace(d.Entry.SEO.Canonical), "/")
	if canonical == "" {
		return "", fmt.Errorf("%w: seo.canonical is empty", core.ErrMissingIdentifier)
	}
	segment := canonical[strings.LastIndex(canonical, "/")+1:]
	if segment == "" {
		return "", fmt.Errorf("%w: seo.canonical has no path segment", core.ErrMissingIdentifier)
	}
	return SlugPrefix + segment, nil
}

// Name returns the recipe title.
func (d *Document) Name() string {
	return collapse(d.Entry.Title)
}

// Description returns the description as plain text.
func (d *Document) Description() string {
	return htmlToText(d.Entry.Description)
}

// Entries pairs ingredients with the SKUs of the requested portion size.
// Ingredients are matched to SKUs by code, then by id. Basics follow the
// ingredients without a SKU. With portions <= 0 no SKUs are used.
// The returned warnings list SKUs that matched no ingredient.
func (d *Document) Entries(portions int) ([]core.IngredientEntry, []string) {
	var warnings []string
	entries := make([]core.IngredientEntry, 0, len(d.Entry.Ingredients)+len(d.Entry.Basics))

	var skus []core.PortionSku
	if portions > 0 {
		found := false
		for _, size := range d.Entry.PortionSizes {
			if size.Portions == portions {
				skus = size.IngredientSkus
				found = true
				break
			}
		}
		if !found && len(d.Entry.PortionSizes) > 0 {
			warnings = append(warnings, fmt.Sprintf("no portion size for %d portions, quantities are unscaled", portions))
		}
	}

	used := make([]bool, len(skus))
	for _, item := range d.Entry.Ingredients {
		entry := core.IngredientEntry{Item: item}
		if i := matchSku(skus, used, item); i >= 0 {
			used[i] = true
			sku := skus[i]
			entry.Sku = &sku
		}
		entries = append(entries, entry)
	}
	for i, sku := range skus {
		if !used[i] {
			warnings = append(warnings, fmt.Sprintf("sku %s matched no ingredient, dropped", skuLabel(sku)))
		}
	}

	for _, basic := range d.Entry.Basics {
		entries = append(entries, core.IngredientEntry{Item: basic})
	}
	return entries, warnings
}

func matchSku(skus []core.PortionSku, used []bool, item core.RawIngredientItem) int {
	if item.Code != "" {
		for i, sku := range skus {
			if !used[i] && sku.Code == item.Code {
				return i
			}
		}
	}
	if item.UID != "" {
		for i, sku := range skus {
			if !used[i] && sku.ID == item.UID {
				return i
			}
		}
	}
	return -1
}

func skuLabel(sku core.PortionSku) string {
	if sku.Code != "" {
		return sku.Code
	}
	if sku.ID != "" {
		return sku.ID
	}
	return "(unidentified)"
}

// Categories returns the cuisine and category titles, sorted and unique.
func (d *Document) Categories() []string {
	names := []string{d.Entry.Cuisine.Label()}
	for _, c := range d.Entry.Categories {
		names = append(names, c.Label())
	}

	seen := make(map[string]bool)
	var out []string
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tags returns tag and allergen names in document order without
// case-insensitive duplicates.
func (d *Document) Tags() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]Titled{d.Entry.Tags, d.Entry.Allergens} {
		for _, t := range group {
			name := t.Label()
			key := core.NormalizeKey(name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, name)
		}
	}
	return out
}

// Instructions returns the cooking steps in order as plain text. Empty steps
// are dropped.
func (d *Document) Instructions() []string {
	steps := make([]Instruction, len(d.Entry.CookingInstructions))
	copy(steps, d.Entry.CookingInstructions)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })

	var out []string
	for _, step := range steps {
		if text := htmlToText(step.Instruction); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Nutrition returns per-portion nutrition keyed by catalog field name.
// Masses are converted from milligrams to grams with one decimal.
func (d *Document) Nutrition() map[string]string {
	p := d.Entry.Nutrition.PerPortion
	out := make(map[string]string)
	if p.EnergyKcal != nil && *p.EnergyKcal != 0 {
		out["calories"] = strconv.FormatFloat(*p.EnergyKcal, 'f', -1, 64) + " kcal"
	}
	grams := map[string]*float64{
		"carbohydrateContent": p.CarbsMg,
		"sugarContent":        p.CarbsSugarsMg,
		"fatContent":          p.FatMg,
		"saturatedFatContent": p.FatSaturatesMg,
		"fiberContent":        p.FibreMg,
		"proteinContent":      p.ProteinMg,
		"sodiumContent":       p.SaltMg,
	}
	for field, mg := range grams {
		if mg == nil || *mg == 0 {
			continue
		}
		g := math.Round(*mg/100) / 10
		out[field] = strconv.FormatFloat(g, 'f', 1, 64) + " g"
	}
	return out
}

// ImageURL returns the main image URL: the preferred width if present,
// otherwise the widest rendition.
func (d *Document) ImageURL() (string, bool) {
	var best core.MediaImage
	for _, img := range d.Entry.Media.Images {
		if img.Image == "" {
			continue
		}
		if img.Width == preferredImageWidth {
			return img.Image, true
		}
		if best.Image == "" || img.Width > best.Width {
			best = img
		}
	}
	return best.Image, best.Image != ""
}

// ImageFilename returns the file name the main image is stored under: the
// last path segment of its URL.
func (d *Document) ImageFilename() (string, bool) {
	raw, ok := d.ImageURL()
	if !ok {
		return "", false
	}
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return "", false
	}
	return name, true
}

// htmlToText extracts the text nodes of an HTML fragment, joined by spaces,
// with whitespace collapsed.
func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(strings.Join(parts, " "))
		case html.TextToken:
			parts = append(parts, string(z.Text()))
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
