package storage

import (
	"testing"

	"github.com/poiesic/quaerit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "full chunk",
			chunk: &core.Chunk{
				Id:        core.IDFromContent("Employees get 20 vacation days"),
				Text:      "Employees get 20 vacation days",
				Domain:    "policy",
				SourceURI: "file://handbook.md",
				Position:  3,
				Sequence:  17,
				Metadata:  map[string]string{"source": "handbook.md", "language": "en"},
				Vector:    []float32{0.1, -0.5, 0.9},
			},
		},
		{
			name: "chunk without vector or metadata",
			chunk: &core.Chunk{
				Id:     42,
				Text:   "Section 2: Term and termination",
				Domain: "legal",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.Text, decoded.Text)
			assert.Equal(t, tt.chunk.Domain, decoded.Domain)
			assert.Equal(t, tt.chunk.SourceURI, decoded.SourceURI)
			assert.Equal(t, tt.chunk.Position, decoded.Position)
			assert.Equal(t, tt.chunk.Sequence, decoded.Sequence)
			assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			if len(tt.chunk.Metadata) > 0 {
				assert.Equal(t, tt.chunk.Metadata, decoded.Metadata)
			}
		})
	}
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	chunk := &core.Chunk{Id: 7, Text: "some passage text", Domain: "technical"}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	checkpoint := &core.Checkpoint{
		Domain:       "legal",
		LastSequence: 128,
		Processed:    500,
	}

	data := MarshalCheckpoint(checkpoint)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, checkpoint.Domain, decoded.Domain)
	assert.Equal(t, checkpoint.LastSequence, decoded.LastSequence)
	assert.Equal(t, checkpoint.Processed, decoded.Processed)
}
