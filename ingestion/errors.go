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


package ingestion

import (
	"errors"
	"fmt"

	"github.com/poiesic/mealsync/core"
)

var (
	// ErrRegistryRequired is returned when an entity registry is not provided.
	ErrRegistryRequired = errors.New("entity registry required")

	// ErrClientFactoryRequired is returned when a client factory is not provided.
	ErrClientFactoryRequired = errors.New("client factory required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// StageError is a document failure tagged with the stage it happened in.
type StageError struct {
	Stage core.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage core.Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
