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


package foodname

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/mealsync/quantity"
)

const weightUnits = `(kg|g|ml|l)`

var (
	countWeightPrefix = regexp.MustCompile(`(?i)^(\d+)\s*[x×]\s*(\d+(?:\.\d+)?)\s*` + weightUnits + `\b\s*`)
	bareWeightPrefix  = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*` + weightUnits + `\b\s*`)
	parenWeightPrefix = regexp.MustCompile(`(?i)^\(\s*(\d+(?:\.\d+)?)\s*` + weightUnits + `\s*\)\s*`)

	bracketRe         = regexp.MustCompile(`\s*\(([^()]*)\)`)
	bracketWeightRe   = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*` + weightUnits + `\b`)
	countByCountRe    = regexp.MustCompile(`(?i)\d+\s*[x×]\s*\d+`)
	trailingMultRe    = regexp.MustCompile(`(?i)\s+[x×]\s*\d+(?:\.\d+)?$`)
	numericTokenRe    = regexp.MustCompile(`(?i)^(\d+(?:[.,/]\d+)?|\d*[¼½¾⅓⅔⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞])([a-z]*)$`)
	multiplierTokenRe = regexp.MustCompile(`(?i)^(?:[x×]\d*|\d+[x×])$`)

	fishRe    = regexp.MustCompile(`(?i)\b(basa|salmon|cod|haddock|hake|pollock|coley|trout|tuna|mackerel|sea ?bass|bream|plaice|tilapia|swordfish|fish)\b`)
	fishCutRe = regexp.MustCompile(`(?i)\b(fillets?|steaks?|loins?)\b`)
	meatRe    = regexp.MustCompile(`(?i)\b(chicken|beef|pork|lamb|turkey|duck|venison|gammon|veal|steaks?|sausages?)\b`)
)

var packagingNouns = map[string]bool{
	"pack": true, "packs": true,
	"packet": true, "packets": true,
	"tin": true, "tins": true,
	"can": true, "cans": true,
	"pouch": true, "pouches": true,
	"jar": true, "jars": true,
	"sachet": true, "sachets": true,
	"tub": true, "tubs": true,
	"carton": true, "cartons": true,
	"bag": true, "bags": true,
	"bottle": true, "bottles": true,
	"box": true, "boxes": true,
}

func isTin(word string) bool {
	switch strings.ToLower(word) {
	case "tin", "tins", "can", "cans":
		return true
	}
	return false
}

// cleaning carries state discovered while stripping a label.
type cleaning struct {
	count  string
	weight string
	size   string
	tinned bool
}

// Normalize returns the canonical food name for label. When cleaning leaves
// nothing, fallback is used instead. The boolean is false when neither yields
// a name.
func Normalize(label, fallback string) (string, bool) {
	text := strings.Join(strings.Fields(label), " ")
	c := &cleaning{}

	text = c.stripPrefix(text)
	text = c.stripBrackets(text)
	text = c.stripTrailing(text)
	text = c.stripLeading(text)

	if text == "" {
		name := capitalize(strings.Join(strings.Fields(fallback), " "))
		return name, name != ""
	}

	if c.tinned && c.size != "" && !strings.Contains(strings.ToLower(text), strings.ToLower(c.size)) {
		text += " (" + c.size + ")"
	}

	name := capitalize(text)
	if prefix := c.proteinPrefix(text); prefix != "" {
		name = prefix + " " + name
	}
	return name, true
}

func (c *cleaning) stripPrefix(text string) string {
	if m := countWeightPrefix.FindStringSubmatch(text); m != nil {
		c.count = m[1]
		c.weight = m[2] + strings.ToLower(m[3])
		return text[len(m[0]):]
	}
	if m := parenWeightPrefix.FindStringSubmatch(text); m != nil {
		c.weight = m[1] + strings.ToLower(m[2])
		c.size = c.weight
		return text[len(m[0]):]
	}
	if m := bareWeightPrefix.FindStringSubmatch(text); m != nil {
		c.weight = m[1] + strings.ToLower(m[2])
		return text[len(m[0]):]
	}
	return text
}

// proteinPrefix keeps pack sizes for cuts that are sold by weight. Fish cuts
// keep the bare weight; meat keeps the count and weight.
func (c *cleaning) proteinPrefix(food string) string {
	if c.weight == "" {
		return ""
	}
	if fishRe.MatchString(food) && fishCutRe.MatchString(food) {
		return c.weight
	}
	if c.count != "" && meatRe.MatchString(food) {
		return c.count + " x " + c.weight
	}
	return ""
}

func (c *cleaning) stripBrackets(text string) string {
	return strings.TrimSpace(bracketRe.ReplaceAllStringFunc(text, func(match string) string {
		inner := strings.TrimSpace(bracketRe.FindStringSubmatch(match)[1])
		if !c.noiseBracket(inner) {
			return match
		}
		return ""
	}))
}

// noiseBracket reports whether bracket content is only quantity or packaging.
func (c *cleaning) noiseBracket(inner string) bool {
	if inner == "" {
		return true
	}
	noise := false
	if m := bracketWeightRe.FindStringSubmatch(inner); m != nil {
		if c.size == "" {
			c.size = m[1] + strings.ToLower(m[2])
		}
		noise = true
	}
	if r, _ := utf8.DecodeRuneInString(inner); unicode.IsDigit(r) || countByCountRe.MatchString(inner) {
		noise = true
	}
	if multiplierTokenRe.MatchString(strings.Join(strings.Fields(inner), "")) {
		noise = true
	}
	for _, word := range strings.Fields(inner) {
		word = strings.ToLower(strings.Trim(word, ".,"))
		if packagingNouns[word] {
			noise = true
			if isTin(word) {
				c.tinned = true
			}
		}
	}
	return noise
}

func (c *cleaning) stripTrailing(text string) string {
	for {
		before := text
		text = strings.TrimSpace(trailingMultRe.ReplaceAllString(text, ""))
		fields := strings.Fields(text)
		if n := len(fields); n > 1 {
			last := strings.ToLower(strings.Trim(fields[n-1], ".,"))
			if packagingNouns[last] {
				if isTin(last) {
					c.tinned = true
				}
				text = strings.Join(fields[:n-1], " ")
			}
		}
		if text == before {
			return text
		}
	}
}

// stripLeading removes numeric, unit, multiplier and packaging tokens from
// the front of text until none remain.
func (c *cleaning) stripLeading(text string) string {
	fields := strings.Fields(text)
	stripped := false
	for len(fields) > 0 {
		token := strings.ToLower(strings.Trim(fields[0], ",."))
		switch {
		case c.leadingNoise(token):
			stripped = true
		case stripped && token == "of":
		default:
			return strings.Join(fields, " ")
		}
		fields = fields[1:]
	}
	return ""
}

func (c *cleaning) leadingNoise(token string) bool {
	if token == "" || token == "x" || token == "×" || token == "-" {
		return true
	}
	if multiplierTokenRe.MatchString(token) {
		return true
	}
	if m := numericTokenRe.FindStringSubmatch(token); m != nil {
		if m[2] == "" {
			return true
		}
		_, ok := quantity.Canonical(m[2])
		return ok
	}
	if _, ok := quantity.Canonical(token); ok {
		return true
	}
	if packagingNouns[token] {
		if isTin(token) {
			c.tinned = true
		}
		return true
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
