// Package openai adapts OpenAI-compatible embedding APIs to the ai.Embedder
// contract. It works against the hosted OpenAI API as well as local
// compatible servers (Ollama, LocalAI, vLLM).
package openai
