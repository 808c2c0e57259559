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


// Package storage provides the storage abstraction layer for poirit.
//
// Two stores back the pipeline:
//
//   - LayerStore: the flat-file medallion tree (bronze raw tiles,
//     silver cleaned POIs, gold enriched records). Files are the only
//     contract between stages, so a stage can be re-run or resumed by
//     pointing it at the same data directory.
//   - StateStore: a local key-value store holding the enrichment cache
//     and stage checkpoints. Losing it never loses data, only the
//     ability to skip work that was already done.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep callers decoupled from
// the backing implementation:
//
//	store, err := layerfs.Open(dataDir)     // returns storage.LayerStore
//	state, err := badger.OpenStateStore(p)  // returns storage.StateStore
//
// Internal constructors may return concrete types since they are only
// used within the implementation package.
//
// # Thread Safety
//
// All store implementations must be safe for concurrent use. The
// parallel enricher reads and writes the state store from many
// goroutines at once.
//
// # Context Support
//
// State-store methods accept context.Context for cancellation. The
// file-backed layer store does single-file operations and omits it.
package storage
