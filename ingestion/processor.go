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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/core"
	"github.com/poiesic/mealsync/ingredients"
	"github.com/poiesic/mealsync/registry"
	"github.com/poiesic/mealsync/source"
	"github.com/poiesic/mealsync/storage"
)

// documentResult is the immutable result of one attempt at one document.
type documentResult struct {
	index    int
	outcome  core.ImportOutcome
	warnings []string
}

// processor imports documents using one worker's client.
type processor struct {
	client        Client
	resolver      *registry.Resolver
	merger        *ingredients.Merger
	ledger        storage.LedgerRepository
	portions      int
	imagesDir     string
	skipUnchanged bool
	logger        *slog.Logger
}

// importState carries a document through the stages.
type importState struct {
	path     string
	stage    core.Stage
	doc      *source.Document
	slug     string
	entries  []core.IngredientEntry
	fields   *recipeFields
	warnings []string
}

func (p *processor) process(ctx context.Context, index int, path string) documentResult {
	state := &importState{path: path, stage: core.StagePending}

	skipped, err := p.run(ctx, state)

	outcome := core.ImportOutcome{
		DocumentID: documentID(state),
		Path:       path,
		Success:    err == nil,
		Skipped:    skipped,
		Stage:      core.StageDone,
	}
	if err != nil {
		outcome.Stage = state.stage
		outcome.ErrorMessage = err.Error()
	}

	if !skipped {
		p.record(ctx, state, outcome)
	}

	return documentResult{
		index:    index,
		outcome:  outcome,
		warnings: state.warnings,
	}
}

func (p *processor) run(ctx context.Context, state *importState) (bool, error) {
	if err := p.parse(state); err != nil {
		return false, err
	}
	if p.unchanged(ctx, state) {
		return true, nil
	}
	if err := p.resolve(ctx, state); err != nil {
		return false, err
	}
	if err := p.submit(ctx, state); err != nil {
		return false, err
	}
	state.stage = core.StageDone
	return false, nil
}

// parse decodes the document and derives everything that needs no remote call.
func (p *processor) parse(state *importState) error {
	state.stage = core.StageParsing

	doc, err := source.Load(state.path)
	if err != nil {
		return stageError(state.stage, err)
	}
	slug, err := doc.Slug()
	if err != nil {
		return stageError(state.stage, err)
	}

	entries, warnings := doc.Entries(p.portions)
	state.doc = doc
	state.slug = slug
	state.entries = entries
	state.fields = newRecipeFields(doc, slug, p.portions)
	state.warnings = append(state.warnings, warnings...)
	return nil
}

// unchanged reports whether the ledger holds a successful import of the same content.
func (p *processor) unchanged(ctx context.Context, state *importState) bool {
	if !p.skipUnchanged || p.ledger == nil {
		return false
	}
	record, err := p.ledger.GetRecord(ctx, state.slug)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.logger.Warn("ledger lookup failed", "document", state.slug, "err", err)
		}
		return false
	}
	return record.Success && record.Fingerprint == state.doc.Fingerprint
}

func (p *processor) resolve(ctx context.Context, state *importState) error {
	state.stage = core.StageResolving

	result, err := p.merger.Merge(ctx, p.resolver, state.entries)
	if err != nil {
		return stageError(state.stage, err)
	}
	state.fields.ingredients = result.Ingredients
	state.warnings = append(state.warnings, result.Warnings...)

	if state.fields.categories, err = p.resolveAll(ctx, core.KindCategory, state.doc.Categories()); err != nil {
		return stageError(state.stage, err)
	}
	if state.fields.tags, err = p.resolveAll(ctx, core.KindTag, state.doc.Tags()); err != nil {
		return stageError(state.stage, err)
	}
	return nil
}

func (p *processor) resolveAll(ctx context.Context, kind core.EntityKind, names []string) ([]*core.Entity, error) {
	entities := make([]*core.Entity, 0, len(names))
	for _, name := range names {
		e, err := p.resolver.Resolve(ctx, kind, name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s %q: %w", kind, name, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (p *processor) submit(ctx context.Context, state *importState) error {
	state.stage = core.StageSubmitting

	existing, err := p.client.GetRecipe(ctx, state.slug)
	if errors.Is(err, catalog.ErrNotFound) {
		p.logger.Debug("recipe not in catalog, creating", "document", state.slug)
		if err := p.client.CreateRecipe(ctx, state.slug); err != nil {
			return stageError(state.stage, err)
		}
		existing, err = p.client.GetRecipe(ctx, state.slug)
	}
	if err != nil {
		return stageError(state.stage, err)
	}

	if err := p.client.UpdateRecipe(ctx, state.slug, buildPayload(existing, state.fields)); err != nil {
		return stageError(state.stage, err)
	}

	p.uploadImage(ctx, state)
	return nil
}

// uploadImage sends the locally downloaded main image, if any. Failures are warnings.
func (p *processor) uploadImage(ctx context.Context, state *importState) {
	if p.imagesDir == "" {
		return
	}
	name, ok := state.doc.ImageFilename()
	if !ok {
		return
	}
	path := filepath.Join(p.imagesDir, name)
	if _, err := os.Stat(path); err != nil {
		p.logger.Debug("image not available locally", "document", state.slug, "path", path)
		return
	}
	if err := p.client.UploadImage(ctx, state.slug, path); err != nil {
		state.warnings = append(state.warnings, fmt.Sprintf("image upload failed: %v", err))
	}
}

// record writes the attempt to the ledger. Ledger failures never fail the document.
func (p *processor) record(ctx context.Context, state *importState, outcome core.ImportOutcome) {
	if p.ledger == nil {
		return
	}
	record := &core.ImportRecord{
		DocumentID: outcome.DocumentID,
		Success:    outcome.Success,
		Stage:      outcome.Stage,
		Error:      outcome.ErrorMessage,
	}
	if state.doc != nil {
		record.Fingerprint = state.doc.Fingerprint
	}
	if err := p.ledger.SaveRecords(ctx, record); err != nil {
		p.logger.Warn("failed to record import", "document", outcome.DocumentID, "err", err)
	}
}

// documentID is the slug when known, otherwise the file name without extension.
func documentID(state *importState) string {
	if state.slug != "" {
		return state.slug
	}
	return strings.TrimSuffix(filepath.Base(state.path), filepath.Ext(state.path))
}
