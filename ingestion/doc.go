// Package ingestion imports batches of source recipe documents into the
// catalog.
//
// Each document moves through a small state machine:
//
//	pending -> parsing -> resolving -> submitting -> done | failed
//
// Parsing reads and decodes the file and derives the canonical slug.
// Resolving merges the ingredient list and resolves categories and tags
// against the shared entity registry. Submitting fetches (or creates) the
// catalog record, overlays the imported fields and uploads the main image.
// A failure at any stage fails that document only; the error is tagged with
// the stage name.
//
// The Pipeline runs a first pass over every document and then retries the
// failed subset, up to ten retry passes by default. With a pool size above
// one, documents are processed by long-lived workers on an ants pool, each
// worker owning its own catalog client.
//
// Usage:
//
//	reg, _ := registry.New()
//	pipeline, err := ingestion.NewPipeline(reg, factory,
//	    ingestion.WithPoolSize(4),
//	    ingestion.WithLedger(ledger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer pipeline.Release()
//
//	report, err := pipeline.Run(ctx, paths)
package ingestion
