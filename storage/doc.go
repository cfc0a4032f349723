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


// Package storage provides the index storage abstraction layer for quaerit.
//
// This package defines the IndexStore interface that decouples the retrieval
// pipeline from any particular vector store. It allows different backends
// (BadgerDB, in-memory, a remote service) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple backends:
//
//	store, err := badger.NewIndexStore(backend)  // returns storage.IndexStore
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends (remote services, in-memory)
//   - Testing: Consumers can use mock implementations without modification
//
// # Architecture
//
//   - IndexStore: per-domain vector collections with exact-match metadata
//     filters and similarity search
//   - CheckpointStore: rebuild progress persistence
//
// Each domain is an isolated collection: keys are domain-prefixed, so a
// search can never observe chunks from another domain.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	store, err := badger.NewIndexStore(backend)
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, checkpoints, backend, err := badger.NewMemoryStores()
//	defer func() { store.Close(); backend.Close() }()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access from
// multiple goroutines. A search that overlaps an insert or delete observes
// either the pre- or post-update state, never a torn record.
package storage
