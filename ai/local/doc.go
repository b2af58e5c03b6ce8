// Package local provides the zero-configuration deterministic embedding
// backend: no API key, no network, identical text always maps to an
// identical unit vector.
package local
