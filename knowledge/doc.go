// Package knowledge stores reference documents that enrich seller
// prompts, for example credit card perk sheets. The in-memory store
// chunks documents on ingest and ranks results by query term overlap.
// Swap in a vector index for semantic retrieval at scale.
package knowledge
