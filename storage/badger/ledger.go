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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/mealsync/core"
	"github.com/poiesic/mealsync/storage"
)

// LedgerRepository implements storage.LedgerRepository for BadgerDB.
type LedgerRepository struct {
	backend *Backend
}

var _ storage.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(backend *Backend) (storage.LedgerRepository, error) {
	if backend == nil {
		return nil, errors.New("ledger: backend is required")
	}
	return &LedgerRepository{
		backend: backend,
	}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *LedgerRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *LedgerRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveRecords inserts or replaces records keyed by document id.
func (r *LedgerRepository) SaveRecords(ctx context.Context, records ...*core.ImportRecord) error {
	for _, record := range records {
		if err := core.ValidateImportRecord(record); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, record := range records {
			if record.ImportedAt.IsZero() {
				record.ImportedAt = now
			}
			key := makeImportRecordKey(record.DocumentID)
			if err := tx.Set(key, storage.MarshalImportRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecord retrieves the record for a document.
// Returns storage.ErrNotFound if none exists.
func (r *LedgerRepository) GetRecord(ctx context.Context, documentID string) (*core.ImportRecord, error) {
	var record *core.ImportRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeImportRecordKey(documentID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalImportRecord(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecords returns every record in key order, which is document id order.
func (r *LedgerRepository) ListRecords(ctx context.Context) ([]*core.ImportRecord, error) {
	var records []*core.ImportRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = importRecordScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalImportRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRecords removes records by document id. Missing ids are ignored.
func (r *LedgerRepository) DeleteRecords(ctx context.Context, documentIDs ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range documentIDs {
			if err := tx.Delete(makeImportRecordKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
