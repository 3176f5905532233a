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


package storage

import (
	"context"

	"github.com/poiesic/mealsync/core"
)

// Repository is the base interface for storage operations.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// LedgerRepository stores one import record per source document.
type LedgerRepository interface {
	Repository

	// SaveRecords inserts or replaces records keyed by DocumentID.
	// Sets ImportedAt if it is zero.
	SaveRecords(ctx context.Context, records ...*core.ImportRecord) error

	// GetRecord returns the record for documentID.
	// Returns ErrNotFound if there is none.
	GetRecord(ctx context.Context, documentID string) (*core.ImportRecord, error)

	// ListRecords returns every record ordered by DocumentID.
	ListRecords(ctx context.Context) ([]*core.ImportRecord, error)

	// DeleteRecords removes records by document id. Missing ids are ignored.
	DeleteRecords(ctx context.Context, documentIDs ...string) error
}
