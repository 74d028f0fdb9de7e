// Package tsumegopdf lays out tsumego problem diagrams into print-ready PDF
// documents: a problems document, an optional solutions key, and optional
// double-sided booklets split into signatures for hand binding.
//
// # Quick Start
//
// Load collections into a store, create a generator and generate:
//
//	store, err := puzzle.OpenSQLite(ctx, "catalog.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	gen := tsumegopdf.NewGenerator(store)
//	result, err := gen.Generate(ctx, tsumegopdf.Request{
//	    Collection:   "cho-elementary",
//	    Key:          true,
//	    ProblemsPath: "problems.pdf",
//	    KeyPath:      "solutions.pdf",
//	})
//
// # Pipeline
//
//  1. Selections are resolved through the store, in order or shuffled.
//  2. Every diagram gets its orientation, color to play and pixel size.
//  3. Diagrams are planned into columns and pages (default, block,
//     proportional or block-proportional placement).
//  4. Pages are rasterized concurrently at 300 dpi; the key renders in
//     parallel on its own renderer pool.
//  5. Pages are written to one PDF, or imposed onto sheets as a booklet.
//
// # Booklets
//
// Set Request.Booklet to impose pages two per sheet side. In a printer's
// spread, pages are ordered so that each signature folds into reading
// order; bind marks are drawn on the fold of every signature's last side.
// A cover may be printed separately or embedded in the first signature.
//
// # Configuration
//
// Use functional options to customize the generator:
//
//	gen := tsumegopdf.NewGenerator(store,
//	    tsumegopdf.WithWorkers(4),
//	    tsumegopdf.WithProgress(os.Stdout),
//	    tsumegopdf.WithVerify(true),
//	)
package tsumegopdf
