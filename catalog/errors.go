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
	"errors"
	"fmt"
)

var (
	// ErrConflict indicates the catalog rejected a create because the entity
	// may already exist (HTTP 400 or 409).
	ErrConflict = errors.New("catalog: entity may already exist")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrUnexpectedResponse indicates a response body could not be interpreted.
	ErrUnexpectedResponse = errors.New("catalog: unexpected response body")

	// ErrUnknownKind indicates an entity kind with no catalog collection.
	ErrUnknownKind = errors.New("catalog: unknown entity kind")
)

// StatusError reports a response status outside the accepted set.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("catalog: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, body)
}
