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


package registry

import "errors"

var (
	// ErrUnknownKind indicates an entity kind the registry does not track.
	ErrUnknownKind = errors.New("registry: unknown entity kind")

	// ErrUnresolved indicates a name could not be matched to a catalog entity
	// even after creating it and reloading the collection.
	ErrUnresolved = errors.New("registry: entity could not be resolved")

	// ErrClientRequired indicates a nil catalog client.
	ErrClientRequired = errors.New("registry: client is required")
)
