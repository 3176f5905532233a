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
	"strconv"
	"strings"
	"unicode/utf8"
)

// vulgarFractions maps unicode fraction runes to their values.
var vulgarFractions = map[rune]float64{
	'¼': 0.25,
	'½': 0.5,
	'¾': 0.75,
	'⅓': 1.0 / 3,
	'⅔': 2.0 / 3,
	'⅕': 0.2,
	'⅖': 0.4,
	'⅗': 0.6,
	'⅘': 0.8,
	'⅙': 1.0 / 6,
	'⅚': 5.0 / 6,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

// numberPattern matches a mixed number, a simple fraction, a whole number
// followed by a unicode fraction, or a decimal. It has exactly one capture group.
const numberPattern = `(\d+\s+\d+\s*/\s*\d+|\d+\s*/\s*\d+|\d*\s?[¼½¾⅓⅔⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞]|\d+(?:\.\d+)?)`

var slashSpacing = regexp.MustCompile(`\s*/\s*`)

// parseNumber converts text captured by numberPattern to a value.
// A zero denominator yields false.
func parseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(slashSpacing.ReplaceAllString(text, "/"))
	if text == "" {
		return 0, false
	}

	if last, size := utf8.DecodeLastRuneInString(text); size > 1 {
		frac, ok := vulgarFractions[last]
		if !ok {
			return 0, false
		}
		whole := strings.TrimSpace(text[:len(text)-size])
		if whole == "" {
			return frac, true
		}
		n, err := strconv.ParseFloat(whole, 64)
		if err != nil {
			return 0, false
		}
		return n + frac, true
	}

	fields := strings.Fields(text)
	switch len(fields) {
	case 1:
		if strings.Contains(fields[0], "/") {
			return parseFraction(fields[0])
		}
		n, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case 2:
		whole, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, false
		}
		frac, ok := parseFraction(fields[1])
		if !ok {
			return 0, false
		}
		return whole + frac, true
	default:
		return 0, false
	}
}

func parseFraction(text string) (float64, bool) {
	num, den, found := strings.Cut(text, "/")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}
