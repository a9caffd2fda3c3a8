// Package catalog makes served tools discoverable.
//
// A [Catalog] is an in-memory tooldiscovery index ranked with BM25 plus a
// tooldoc store. [Catalog.Load] walks the enabled backends of a
// backend.Registry; backends that also implement [Documenter] contribute
// summaries, notes, and examples.
package catalog
