// Package mock provides test doubles for the ai interfaces. The default
// behavior is deterministic so tests are reproducible; custom behavior,
// including failure injection, is installed via function fields.
package mock
