package badger

import (
	"context"
	"testing"

	"github.com/poiesic/quaerit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointLifecycle(t *testing.T) {
	_, checkpointStore, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	// Absent checkpoint is nil, not an error
	loaded, err := checkpointStore.LoadCheckpoint(ctx, "policy")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	checkpoint := &core.Checkpoint{
		Domain:       "policy",
		LastSequence: 42,
		Processed:    100,
	}
	require.NoError(t, checkpointStore.SaveCheckpoint(ctx, checkpoint))

	loaded, err = checkpointStore.LoadCheckpoint(ctx, "policy")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, uint64(42), loaded.LastSequence)
	assert.Equal(t, uint64(100), loaded.Processed)

	// Save replaces
	checkpoint.LastSequence = 99
	checkpoint.Processed = 250
	require.NoError(t, checkpointStore.SaveCheckpoint(ctx, checkpoint))

	loaded, err = checkpointStore.LoadCheckpoint(ctx, "policy")
	require.NoError(t, err)
	assert.Equal(t, uint64(99), loaded.LastSequence)

	// Checkpoints are per-domain
	other, err := checkpointStore.LoadCheckpoint(ctx, "legal")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, checkpointStore.ClearCheckpoint(ctx, "policy"))
	loaded, err = checkpointStore.LoadCheckpoint(ctx, "policy")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing twice is harmless
	require.NoError(t, checkpointStore.ClearCheckpoint(ctx, "policy"))
}
