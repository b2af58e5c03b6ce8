// Package query answers natural-language questions about a built collection.
//
// A query is one embedding call followed by one filtered nearest-neighbour
// search; semantic ranking and exact metadata filtering compose so that only
// entries satisfying the predicate are eligible for ranking. Raw distances
// are converted to a display similarity of 1 - distance.
package query
