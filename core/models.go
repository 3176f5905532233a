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


package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a content fingerprint for source documents.
type ID uint64

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(content []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(content)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NormalizeKey produces the lookup key used for deduplication and cache access:
// surrounding whitespace trimmed, inner whitespace collapsed, lowercased.
// Returns "" when nothing remains.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// MediaImage is a single rendition of an image attached to a source record.
type MediaImage struct {
	Image string `json:"image"`
	Width int    `json:"width"`
}

// Media holds the image renditions attached to a source record.
type Media struct {
	Images []MediaImage `json:"images"`
}

// RawIngredientItem is an ingredient or basic as listed in a source document.
// All fields are optional.
type RawIngredientItem struct {
	Label string `json:"label,omitempty"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Code  string `json:"code,omitempty"`
	UID   string `json:"uid,omitempty"`
	Media Media  `json:"media,omitempty"`
}

// DisplayLabel returns the best human-readable text for the item:
// label, then name, then title. Whitespace is collapsed.
func (r RawIngredientItem) DisplayLabel() string {
	for _, candidate := range []string{r.Label, r.Name, r.Title} {
		if text := strings.Join(strings.Fields(candidate), " "); text != "" {
			return text
		}
	}
	return ""
}

// FallbackName returns the raw name used when label cleaning yields nothing.
func (r RawIngredientItem) FallbackName() string {
	for _, candidate := range []string{r.Name, r.Title} {
		if text := strings.Join(strings.Fields(candidate), " "); text != "" {
			return text
		}
	}
	return ""
}

// SkuQuantities holds the per-box quantities of a portion SKU.
type SkuQuantities struct {
	InBox float64 `json:"in_box"`
}

// PortionSku is the ingredient quantity record for one serving size.
type PortionSku struct {
	Code       string        `json:"code,omitempty"`
	ID         string        `json:"id,omitempty"`
	Quantities SkuQuantities `json:"quantities"`
}

// Multiplier returns the box quantity as a multiplier, or nil when it is
// absent or has no effect.
func (s *PortionSku) Multiplier() *float64 {
	if s == nil || s.Quantities.InBox <= 0 || s.Quantities.InBox == 1 {
		return nil
	}
	m := s.Quantities.InBox
	return &m
}

// IngredientEntry pairs a raw ingredient with the SKU selected for it, if any.
type IngredientEntry struct {
	Item RawIngredientItem
	Sku  *PortionSku
}

// ParsedQuantity is the structured quantity extracted from ingredient text.
// Amount is never negative when present. Unit is a canonical unit token.
// Multiplier is set when the text carries a repeat count that must be applied
// exactly once on top of Amount.
type ParsedQuantity struct {
	Amount     *float64
	Unit       string
	Multiplier *float64
}

// HasAmount reports whether an amount was found.
func (p ParsedQuantity) HasAmount() bool {
	return p.Amount != nil
}

// EntityKind identifies a catalog collection.
type EntityKind string

const (
	KindFood     EntityKind = "food"
	KindUnit     EntityKind = "unit"
	KindCategory EntityKind = "category"
	KindTag      EntityKind = "tag"
)

// EntityKinds lists every kind kept in the registry.
var EntityKinds = []EntityKind{KindFood, KindUnit, KindCategory, KindTag}

// Entity is a remote catalog object. Foods, categories and tags use ID, Name
// and Slug; units additionally carry plural and abbreviation forms.
type Entity struct {
	ID                 string `json:"id,omitempty"`
	Name               string `json:"name,omitempty"`
	Slug               string `json:"slug,omitempty"`
	PluralName         string `json:"pluralName,omitempty"`
	Abbreviation       string `json:"abbreviation,omitempty"`
	PluralAbbreviation string `json:"pluralAbbreviation,omitempty"`
}

// Keys returns every normalized key the entity can be found under.
func (e *Entity) Keys() []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, form := range []string{e.Name, e.Slug, e.PluralName, e.Abbreviation, e.PluralAbbreviation} {
		key := NormalizeKey(form)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// UnitsCompatible reports whether two units can be merged: both absent,
// equal remote ids when both have one, otherwise any shared name,
// plural or abbreviation form.
func UnitsCompatible(a, b *Entity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	forms := func(e *Entity) []string {
		var out []string
		for _, f := range []string{e.Name, e.PluralName, e.Abbreviation, e.PluralAbbreviation} {
			if k := NormalizeKey(f); k != "" {
				out = append(out, k)
			}
		}
		return out
	}
	for _, x := range forms(a) {
		for _, y := range forms(b) {
			if x == y {
				return true
			}
		}
	}
	return false
}

// ResolvedIngredient is a deduplicated, quantified ingredient line ready for
// submission to the catalog.
type ResolvedIngredient struct {
	DisplayText  string
	OriginalText string
	FoodKey      string
	Food         *Entity
	Quantity     *float64
	Unit         *Entity
	ReferenceID  *uuid.UUID
}

// Stage is a step of the per-document import state machine.
type Stage string

const (
	StagePending    Stage = "pending"
	StageParsing    Stage = "parsing"
	StageResolving  Stage = "resolving"
	StageSubmitting Stage = "submitting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// ImportOutcome is the result of importing one source document.
// Stage is the stage that failed, or StageDone on success.
type ImportOutcome struct {
	DocumentID   string
	Path         string
	Success      bool
	Skipped      bool
	Stage        Stage
	ErrorMessage string
}

// ImportRecord is the persisted ledger entry for a document.
type ImportRecord struct {
	DocumentID  string
	Fingerprint ID
	Success     bool
	Stage       Stage
	Error       string
	ImportedAt  time.Time
}
