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

import "errors"

// Domain validation errors
var (
	// ErrUnreadableDocument indicates a source document could not be read or decoded.
	ErrUnreadableDocument = errors.New("unreadable source document")

	// ErrMissingIdentifier indicates a source document has no canonical identifier.
	ErrMissingIdentifier = errors.New("canonical identifier missing")

	// ErrInvalidEntity indicates an Entity failed validation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidIngredient indicates a ResolvedIngredient failed validation.
	ErrInvalidIngredient = errors.New("invalid ingredient")

	// ErrInvalidImportRecord indicates an ImportRecord failed validation.
	ErrInvalidImportRecord = errors.New("invalid import record")

	// ErrNegativeQuantity indicates a quantity below zero.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrEmptyName indicates a required name is empty.
	ErrEmptyName = errors.New("name cannot be empty")
)
