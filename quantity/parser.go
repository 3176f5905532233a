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

	"github.com/poiesic/mealsync/core"
)

var (
	countWeightRe  = regexp.MustCompile(`(?i)^(\d+)\s*[x×]\s*` + numberPattern + `\s*` + unitPattern + `\b`)
	parenBaseRe    = regexp.MustCompile(`(?i)\(\s*` + numberPattern + `\s*(?:` + unitPattern + `\b)?\s*\)\s*[x×]\s*(\d+(?:\.\d+)?)`)
	trailingMultRe = regexp.MustCompile(`(?i)^(.*\S)\s+[x×]\s*(\d+(?:\.\d+)?)$`)
	leadingUnitRe  = regexp.MustCompile(`(?i)^` + numberPattern + `\s*` + unitPattern + `\b`)
	leadingNumRe   = regexp.MustCompile(`^` + numberPattern + `(?:\s+|$)`)
	parenUnitRe    = regexp.MustCompile(`(?i)\(\s*` + numberPattern + `\s*` + unitPattern + `\b[^)]*\)`)
	anyUnitRe      = regexp.MustCompile(`(?i)(?:^|[^\w./])` + numberPattern + `\s*` + unitPattern + `\b`)
)

// Rule is a single matcher in the parse table. Match reports whether the rule
// applies to text; a matching rule may still return an empty quantity when the
// number it found is unusable.
type Rule struct {
	Name  string
	Match func(text string) (core.ParsedQuantity, bool)
}

// Parser runs an ordered rule table over ingredient labels.
type Parser struct {
	rules []Rule
}

// NewParser creates a parser with the standard rule table.
func NewParser() *Parser {
	p := &Parser{}
	p.rules = []Rule{
		{Name: "count-weight", Match: matchCountWeight},
		{Name: "multiplier", Match: p.matchMultiplier},
		{Name: "leading-unit", Match: matchLeadingUnit},
		{Name: "leading-number", Match: matchLeadingNumber},
		{Name: "paren-unit", Match: matchParenUnit},
		{Name: "any-unit", Match: matchAnyUnit},
	}
	return p
}

// Parse extracts a quantity from label. The zero value is returned when no
// rule matches.
func (p *Parser) Parse(label string) core.ParsedQuantity {
	return p.parseFrom(cleanLabel(label), 0)
}

func (p *Parser) parseFrom(text string, start int) core.ParsedQuantity {
	if text == "" {
		return core.ParsedQuantity{}
	}
	for _, rule := range p.rules[start:] {
		if q, ok := rule.Match(text); ok {
			return q
		}
	}
	return core.ParsedQuantity{}
}

var defaultParser = NewParser()

// Parse extracts a quantity from label using the standard rule table.
func Parse(label string) core.ParsedQuantity {
	return defaultParser.Parse(label)
}

func cleanLabel(label string) string {
	return strings.Join(strings.Fields(label), " ")
}

// matchCountWeight returns the count alone for "2 x 110g ...". The per item
// weight stays in the food name, for fish cuts as for everything else.
func matchCountWeight(text string) (core.ParsedQuantity, bool) {
	m := countWeightRe.FindStringSubmatch(text)
	if m == nil {
		return core.ParsedQuantity{}, false
	}
	count, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return core.ParsedQuantity{}, true
	}
	return core.ParsedQuantity{Amount: &count}, true
}

// matchMultiplier handles "(110g) x2" and labels ending in "x2". A trailing
// multiplier is combined with whatever the lower priority rules find in the
// rest of the label.
func (p *Parser) matchMultiplier(text string) (core.ParsedQuantity, bool) {
	if m := parenBaseRe.FindStringSubmatch(text); m != nil {
		q := core.ParsedQuantity{}
		if amount, ok := parseNumber(m[1]); ok {
			q.Amount = &amount
			q.Unit = canonicalUnit(m[2])
		}
		q.Multiplier = multiplier(m[3])
		return q, true
	}

	m := trailingMultRe.FindStringSubmatch(text)
	if m == nil {
		return core.ParsedQuantity{}, false
	}
	q := p.parseFrom(m[1], 2)
	mult := multiplier(m[2])
	switch {
	case mult == nil:
	case q.Multiplier != nil:
		combined := *q.Multiplier * *mult
		q.Multiplier = &combined
	default:
		q.Multiplier = mult
	}
	return q, true
}

func matchLeadingUnit(text string) (core.ParsedQuantity, bool) {
	m := leadingUnitRe.FindStringSubmatch(text)
	if m == nil {
		return core.ParsedQuantity{}, false
	}
	return amountWithUnit(m[1], m[2]), true
}

// matchLeadingNumber handles a bare count. When a parenthesized amount and
// unit follow, that amount wins and the count becomes the multiplier.
func matchLeadingNumber(text string) (core.ParsedQuantity, bool) {
	m := leadingNumRe.FindStringSubmatch(text)
	if m == nil {
		return core.ParsedQuantity{}, false
	}
	count, ok := parseNumber(m[1])
	if !ok {
		return core.ParsedQuantity{}, true
	}

	rest := text[len(m[0]):]
	if pm := parenUnitRe.FindStringSubmatch(rest); pm != nil {
		q := amountWithUnit(pm[1], pm[2])
		if q.HasAmount() && count != 1 {
			q.Multiplier = &count
		}
		return q, true
	}
	return core.ParsedQuantity{Amount: &count}, true
}

func matchParenUnit(text string) (core.ParsedQuantity, bool) {
	m := parenUnitRe.FindStringSubmatch(text)
	if m == nil {
		return core.ParsedQuantity{}, false
	}
	return amountWithUnit(m[1], m[2]), true
}

func matchAnyUnit(text string) (core.ParsedQuantity, bool) {
	m := anyUnitRe.FindStringSubmatch(text)
	if m == nil {
		return core.ParsedQuantity{}, false
	}
	return amountWithUnit(m[1], m[2]), true
}

func amountWithUnit(number, unit string) core.ParsedQuantity {
	amount, ok := parseNumber(number)
	if !ok {
		return core.ParsedQuantity{}
	}
	return core.ParsedQuantity{Amount: &amount, Unit: canonicalUnit(unit)}
}

func canonicalUnit(token string) string {
	if token == "" {
		return ""
	}
	canonical, _ := Canonical(token)
	return canonical
}

// multiplier returns nil for values that would have no effect.
func multiplier(text string) *float64 {
	m, err := strconv.ParseFloat(text, 64)
	if err != nil || m <= 0 || m == 1 {
		return nil
	}
	return &m
}
