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
	"fmt"
)

// ValidateEntity validates a remote catalog entity.
//
// Validation rules:
//   - ID must not be empty (entities are only cached once the catalog has assigned one)
//   - at least one of Name or Slug must be present
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if entity.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidEntity)
	}

	if NormalizeKey(entity.Name) == "" && NormalizeKey(entity.Slug) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyName)
	}

	return nil
}

// ValidateIngredient validates a ResolvedIngredient according to domain rules.
//
// Validation rules:
//   - Food must be present and named; it may lack an id when the catalog
//     did not echo one on create
//   - Quantity must not be negative
//   - Unit, when present, must be a valid catalog entity
//
// NOT validated:
//   - ReferenceID (assigned at submission when absent)
func ValidateIngredient(ing *ResolvedIngredient) error {
	if ing == nil {
		return fmt.Errorf("%w: ingredient is nil", ErrInvalidIngredient)
	}

	if ing.Food == nil {
		return fmt.Errorf("%w: food: %w: entity is nil", ErrInvalidIngredient, ErrInvalidEntity)
	}
	if NormalizeKey(ing.Food.Name) == "" && NormalizeKey(ing.Food.Slug) == "" {
		return fmt.Errorf("%w: food: %w", ErrInvalidIngredient, ErrEmptyName)
	}

	if ing.Quantity != nil && *ing.Quantity < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIngredient, ErrNegativeQuantity)
	}

	if ing.Unit != nil {
		if err := ValidateEntity(ing.Unit); err != nil {
			return fmt.Errorf("%w: unit: %w", ErrInvalidIngredient, err)
		}
	}

	return nil
}

// ValidateImportRecord validates a ledger record before it is persisted.
func ValidateImportRecord(record *ImportRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidImportRecord)
	}

	if record.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidImportRecord, ErrMissingIdentifier)
	}

	return nil
}
