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


package mealsync

import (
	"log/slog"

	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/ingestion"
	"github.com/poiesic/mealsync/registry"
	"github.com/poiesic/mealsync/storage"
	"github.com/poiesic/mealsync/storage/badger"
)

// Importer wires the catalog configuration, the shared entity registry and
// the optional import ledger into pipelines.
type Importer struct {
	config   *catalog.Config
	backend  *badger.Backend
	ledger   storage.LedgerRepository
	registry *registry.Registry
	logger   *slog.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*importerOptions)

type importerOptions struct {
	ledgerPath string
	inMemory   bool
	logger     *slog.Logger
}

// WithLedgerPath stores the import ledger in a BadgerDB directory at path.
func WithLedgerPath(path string) ImporterOption {
	return func(o *importerOptions) {
		o.ledgerPath = path
	}
}

// WithInMemoryLedger keeps the import ledger in memory for the lifetime of
// the Importer.
func WithInMemoryLedger() ImporterOption {
	return func(o *importerOptions) {
		o.inMemory = true
	}
}

// WithImporterLogger sets the logger handed to every component.
func WithImporterLogger(logger *slog.Logger) ImporterOption {
	return func(o *importerOptions) {
		o.logger = logger
	}
}

// NewImporter validates cfg and opens the ledger if one is configured.
func NewImporter(cfg *catalog.Config, opts ...ImporterOption) (*Importer, error) {
	options := &importerOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if cfg == nil {
		cfg = catalog.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := registry.New(registry.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	imp := &Importer{
		config:   cfg,
		registry: reg,
		logger:   options.logger,
	}

	if options.ledgerPath != "" || options.inMemory {
		backend, err := badger.OpenBackend(options.ledgerPath, options.inMemory)
		if err != nil {
			return nil, err
		}
		ledger, err := badger.NewLedgerRepository(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		imp.backend = backend
		imp.ledger = ledger
	}

	return imp, nil
}

// Close closes the ledger, if any.
func (imp *Importer) Close() error {
	if imp.backend == nil {
		return nil
	}
	if err := imp.ledger.Close(); err != nil {
		imp.logger.Error("error closing ledger", "err", err)
		return err
	}
	if err := imp.backend.Close(); err != nil {
		imp.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Ledger returns the import ledger, or nil when none is configured.
func (imp *Importer) Ledger() storage.LedgerRepository {
	return imp.ledger
}

// Registry returns the entity registry shared by every pipeline of this Importer.
func (imp *Importer) Registry() *registry.Registry {
	return imp.registry
}

// NewClient creates a catalog client. Each pipeline worker gets its own.
func (imp *Importer) NewClient() (*catalog.Client, error) {
	return catalog.NewClient(imp.config, catalog.WithLogger(imp.logger))
}

// NewPipeline creates an import pipeline recording into the ledger.
// Options passed by the caller are applied last.
func (imp *Importer) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	factory := func() (ingestion.Client, error) {
		return imp.NewClient()
	}
	base := []ingestion.Option{ingestion.WithLogger(imp.logger)}
	if imp.ledger != nil {
		base = append(base, ingestion.WithLedger(imp.ledger))
	}
	return ingestion.NewPipeline(imp.registry, factory, append(base, opts...)...)
}
