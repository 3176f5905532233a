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


package quantity

import (
	"regexp"
	"sort"
	"strings"
)

// unitAliases maps every recognised surface form to its canonical unit token.
var unitAliases = map[string]string{
	// Weight
	"g":         "gram",
	"gr":        "gram",
	"gram":      "gram",
	"grams":     "gram",
	"gramme":    "gram",
	"grammes":   "gram",
	"kg":        "kilogram",
	"kgs":       "kilogram",
	"kilo":      "kilogram",
	"kilos":     "kilogram",
	"kilogram":  "kilogram",
	"kilograms": "kilogram",
	"oz":        "ounce",
	"ounce":     "ounce",
	"ounces":    "ounce",
	"lb":        "pound",
	"lbs":       "pound",
	"pound":     "pound",
	"pounds":    "pound",

	// Volume
	"ml":          "millilitre",
	"mls":         "millilitre",
	"millilitre":  "millilitre",
	"millilitres": "millilitre",
	"milliliter":  "millilitre",
	"milliliters": "millilitre",
	"l":           "litre",
	"ltr":         "litre",
	"litre":       "litre",
	"litres":      "litre",
	"liter":       "litre",
	"liters":      "litre",
	"tsp":         "teaspoon",
	"tsps":        "teaspoon",
	"teaspoon":    "teaspoon",
	"teaspoons":   "teaspoon",
	"tbsp":        "tablespoon",
	"tbsps":       "tablespoon",
	"tbs":         "tablespoon",
	"tablespoon":  "tablespoon",
	"tablespoons": "tablespoon",
	"cup":         "cup",
	"cups":        "cup",

	// Length
	"cm":          "centimetre",
	"centimetre":  "centimetre",
	"centimetres": "centimetre",
	"centimeter":  "centimetre",
	"centimeters": "centimetre",

	// Count-like
	"pinch":    "pinch",
	"pinches":  "pinch",
	"clove":    "clove",
	"cloves":   "clove",
	"slice":    "slice",
	"slices":   "slice",
	"sprig":    "sprig",
	"sprigs":   "sprig",
	"bunch":    "bunch",
	"bunches":  "bunch",
	"handful":  "handful",
	"handfuls": "handful",
}

// unitPattern is an alternation of every alias, longest first so that
// "tbsp" wins over "tbs" and "kg" over "g".
var unitPattern = func() string {
	forms := make([]string, 0, len(unitAliases))
	for form := range unitAliases {
		forms = append(forms, regexp.QuoteMeta(form))
	}
	sort.Slice(forms, func(i, j int) bool {
		if len(forms[i]) != len(forms[j]) {
			return len(forms[i]) > len(forms[j])
		}
		return forms[i] < forms[j]
	})
	return "(" + strings.Join(forms, "|") + ")"
}()

// Canonical returns the canonical unit token for a surface form.
func Canonical(token string) (string, bool) {
	canonical, ok := unitAliases[strings.ToLower(strings.TrimSpace(token))]
	return canonical, ok
}

// Aliases returns the canonical token followed by every surface form that maps
// to it, sorted. Returns nil for unknown tokens.
func Aliases(canonical string) []string {
	canonical, ok := Canonical(canonical)
	if !ok {
		return nil
	}
	forms := []string{canonical}
	for form, target := range unitAliases {
		if target == canonical && form != canonical {
			forms = append(forms, form)
		}
	}
	sort.Strings(forms[1:])
	return forms
}
