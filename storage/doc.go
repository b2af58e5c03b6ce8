// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the collection-store abstraction for progdex.
//
// This package defines the CollectionRepository interface that decouples the
// batch loader and query engine from the storage implementation, plus the
// filter predicate tree evaluated against entry metadata during search.
//
// # Collections
//
// A collection is a named, persistent set of (id, vector, metadata, document)
// entries under a caller-supplied storage root. Each collection's manifest
// records the identity of the embedding backend that produced it and the
// vector dimension fixed by the first committed batch; both are verified on
// reopen so distances within a collection stay comparable.
//
// # Filtering
//
// Search composes approximate nearest-neighbour ranking with an exact
// predicate over metadata: only entries the predicate matches are eligible,
// and filtering is never approximate. Predicates are explicit tagged nodes
// (Eq, In, NotIn, BoolEq, Gt, And) so they can be validated and evaluated
// without dynamic interpretation.
//
// # Usage
//
// Create a repository instance:
//
//	repo, err := badger.NewRepository("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// Repository implementations must support concurrent readers. Writers are
// assumed sequential: the batch loader issues batches strictly in order and
// a rebuild does not overlap queries against the same collection.
package storage
