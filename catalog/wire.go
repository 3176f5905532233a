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


package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/poiesic/mealsync/core"
)

// listKeys are the envelope fields that may hold a page of results.
var listKeys = []string{"list", "items", "data", "results"}

type wireEntity struct {
	ID                 json.RawMessage `json:"id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	PluralName         string          `json:"pluralName"`
	Abbreviation       string          `json:"abbreviation"`
	PluralAbbreviation string          `json:"pluralAbbreviation"`
}

func (w wireEntity) entity() *core.Entity {
	return &core.Entity{
		ID:                 rawID(w.ID),
		Name:               w.Name,
		Slug:               w.Slug,
		PluralName:         w.PluralName,
		Abbreviation:       w.Abbreviation,
		PluralAbbreviation: w.PluralAbbreviation,
	}
}

// rawID accepts string and numeric ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeList reads a page that is either a bare array or an object holding
// the array under one of listKeys.
func decodeList(body []byte) ([]wireEntity, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var items []wireEntity
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return items, nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		for _, key := range listKeys {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", ErrUnexpectedResponse, key, err)
			}
			return items, nil
		}
		return nil, fmt.Errorf("%w: no list field", ErrUnexpectedResponse)
	default:
		return nil, fmt.Errorf("%w: not a list", ErrUnexpectedResponse)
	}
}
