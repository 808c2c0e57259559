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


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/storage"
)

// StateStore implements storage.StateStore for BadgerDB.
type StateStore struct {
	backend *Backend
}

var _ storage.StateStore = (*StateStore)(nil)

// NewStateStore wraps an existing backend. Close closes the backend.
func NewStateStore(backend *Backend) *StateStore {
	return &StateStore{
		backend: backend,
	}
}

// OpenStateStore opens the state store at the specified path.
func OpenStateStore(filePath string) (storage.StateStore, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return NewStateStore(backend), nil
}

// Close closes the underlying backend.
func (s *StateStore) Close() error {
	return s.backend.Close()
}

// PutEnrichment stores or replaces the cached enrichment for a POI.
func (s *StateStore) PutEnrichment(ctx context.Context, state *core.EnrichmentState) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if state.EnrichedAt.IsZero() {
			state.EnrichedAt = time.Now().UTC()
		}
		key := makeEnrichmentKey(state.OSMID)
		value := storage.MarshalEnrichmentState(state)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEnrichment retrieves the cached enrichment for an OSM ID.
// Returns storage.ErrNotFound on a cache miss.
func (s *StateStore) GetEnrichment(ctx context.Context, osmID string) (*core.EnrichmentState, error) {
	var state *core.EnrichmentState
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEnrichmentKey(osmID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			state, unmarshalErr = storage.UnmarshalEnrichmentState(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// CountEnrichments returns the number of cached enrichments.
func (s *StateStore) CountEnrichments(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(enrichmentPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SaveCheckpoint persists stage progress for a city.
func (s *StateStore) SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		checkpoint.UpdatedAt = time.Now().UTC()
		key := makeCheckpointKey(checkpoint.Stage, checkpoint.City)
		value := storage.MarshalCheckpoint(checkpoint)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCheckpoint retrieves stage progress for a city.
// Returns nil, nil if the stage has never checkpointed.
func (s *StateStore) LoadCheckpoint(ctx context.Context, stage, city string) (*core.Checkpoint, error) {
	var checkpoint *core.Checkpoint
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(stage, city))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)

	return checkpoint, err
}
