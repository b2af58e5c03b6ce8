// Package ai defines the embedding contract consumed by the indexing and
// query pipelines.
//
// Backends are interchangeable behind the Embedder interface: ai/openai
// adapts any OpenAI-compatible embedding API, ai/local provides a
// zero-configuration deterministic embedder, and ai/mock provides test
// doubles. Each backend reports a stable identity string so a collection can
// reject an embedder other than the one that built it.
package ai
