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

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
)

// CheckpointStore persists per-domain rebuild progress so an interrupted
// rebuild can resume instead of starting over.
type CheckpointStore struct {
	backend *Backend
}

var _ storage.CheckpointStore = (*CheckpointStore)(nil)

// NewCheckpointStore creates a new CheckpointStore on an open backend.
func NewCheckpointStore(backend *Backend) (storage.CheckpointStore, error) {
	return &CheckpointStore{backend: backend}, nil
}

// SaveCheckpoint stores the checkpoint for its domain, replacing any
// previous one.
func (s *CheckpointStore) SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	if err := s.backend.checkOpen(ctx); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey(checkpoint.Domain), storage.MarshalCheckpoint(checkpoint)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCheckpoint returns the checkpoint for a domain, or nil when none
// has been saved.
func (s *CheckpointStore) LoadCheckpoint(ctx context.Context, domain core.Domain) (*core.Checkpoint, error) {
	if err := s.backend.checkOpen(ctx); err != nil {
		return nil, err
	}
	var checkpoint *core.Checkpoint
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(domain))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return checkpoint, nil
}

// ClearCheckpoint removes the checkpoint for a domain. No-op when absent.
func (s *CheckpointStore) ClearCheckpoint(ctx context.Context, domain core.Domain) error {
	if err := s.backend.checkOpen(ctx); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCheckpointKey(domain)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
