// Package mealsync imports third-party recipe documents into a self-hosted
// recipe catalog.
//
// An Importer ties together the catalog client configuration, the entity
// registry shared by every worker, and an optional BadgerDB ledger of past
// imports:
//
//	cfg := catalog.NewConfig(
//	    catalog.WithBaseURL("https://mealie.example.com/api"),
//	    catalog.WithToken(token),
//	)
//	imp, err := mealsync.NewImporter(cfg, mealsync.WithLedgerPath("./ledger"))
//	if err != nil {
//	    return err
//	}
//	defer imp.Close()
//
//	pipeline, err := imp.NewPipeline(ingestion.WithPoolSize(4))
//	if err != nil {
//	    return err
//	}
//	defer pipeline.Release()
//
//	report, err := pipeline.Run(ctx, paths)
//
// The building blocks live in subpackages: quantity parses amounts and
// units, foodname cleans ingredient labels, registry resolves catalog
// entities, ingredients merges duplicate lines and ingestion runs batches.
package mealsync
