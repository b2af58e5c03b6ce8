// Package synth turns raw catalog rows into indexable program documents.
//
// Synthesis is deterministic: the same row at the same ordinal position
// always yields the same id, text, and metadata, so embeddings are
// reproducible across rebuilds of unchanged input. Per-row parse failures in
// the admission-history field are recovered with a labeled fallback and
// never fail the pipeline.
package synth
