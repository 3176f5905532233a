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


// Package storage defines the persistence layer for mealsync.
//
// The only persisted state is the import ledger: one record per source
// document with the fingerprint of the content last imported and the outcome
// of that import. The ledger lets a run skip documents that have not changed
// since their last successful import.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined here:
//
//	ledger, err := badger.NewLedgerRepository(backend)  // returns storage.LedgerRepository
//
// Internal helpers may return concrete types.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/ledger", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	ledger, err := badger.NewLedgerRepository(backend)
//
// Use in tests with in-memory storage:
//
//	ledger, backend, err := badger.NewMemoryLedger()
//
// # Thread Safety
//
// Repository implementations must be safe for concurrent use; pipeline
// workers record outcomes in parallel.
package storage
