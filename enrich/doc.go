// Package enrich runs the silver → gold stage: POIs are scored for
// tourism relevance, the highest-priority ones are enriched with travel
// metadata by an LLM (with a deterministic fallback when the model
// fails), and a city-level destination profile is generated and
// supplemented with Wikidata facts.
//
// Enrichment is resumable: POIs already present in the gold layer are
// skipped, the gold file is rewritten every few completions, and a
// local state store caches enrichments by content hash so unchanged
// POIs are never re-sent to the model.
package enrich
