// Package ingest builds collections from catalog datasets.
//
// The loader synthesizes every row, partitions the documents into fixed-size
// batches preserving row order, and commits each batch sequentially:
// embed, then one durable write. Sequential commits keep the fail-fast
// invariant simple — when batch k fails, exactly the items of batches 0..k-1
// are in the store, and nothing from batch k or later. Embedding calls
// dominate latency, so concurrency across batches would buy little.
package ingest
