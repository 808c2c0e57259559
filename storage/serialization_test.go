package storage

import (
	"testing"
	"time"

	"github.com/poiesic/poirit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalEnrichmentState(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		state *core.EnrichmentState
	}{
		{
			name: "full state",
			state: &core.EnrichmentState{
				OSMID:       "node/123456",
				ContentHash: 0xdeadbeefcafe,
				Model:       "llama3.2",
				EnrichedAt:  now,
				Payload:     []byte(`{"description":"A hilltop fortress."}`),
			},
		},
		{
			name: "empty payload",
			state: &core.EnrichmentState{
				OSMID:       "way/789",
				ContentHash: 1,
				Model:       "mistral",
				EnrichedAt:  now,
			},
		},
		{
			name: "unicode payload",
			state: &core.EnrichmentState{
				OSMID:       "node/42",
				ContentHash: 99,
				Model:       "llama3.2",
				EnrichedAt:  now,
				Payload:     []byte(`{"tips":["ნარიყალა is quietest at dusk"]}`),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalEnrichmentState(tt.state)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalEnrichmentState(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.state.OSMID, decoded.OSMID)
			assert.Equal(t, tt.state.ContentHash, decoded.ContentHash)
			assert.Equal(t, tt.state.Model, decoded.Model)
			assert.True(t, tt.state.EnrichedAt.Equal(decoded.EnrichedAt))
			// Handle nil vs empty slice
			if len(tt.state.Payload) == 0 {
				assert.Empty(t, decoded.Payload)
			} else {
				assert.Equal(t, tt.state.Payload, decoded.Payload)
			}
		})
	}
}

func TestUnmarshalEnrichmentState_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"truncated data", MarshalEnrichmentState(&core.EnrichmentState{
			OSMID:      "node/1",
			Model:      "llama3.2",
			EnrichedAt: time.Now(),
		})[:3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEnrichmentState(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name       string
		checkpoint *core.Checkpoint
	}{
		{
			name: "mid-run checkpoint",
			checkpoint: &core.Checkpoint{
				Stage:     "enrich",
				City:      "tbilisi",
				Position:  350,
				Total:     1200,
				UpdatedAt: now,
			},
		},
		{
			name: "fresh checkpoint",
			checkpoint: &core.Checkpoint{
				Stage:     "harvest",
				City:      "batumi",
				Position:  0,
				Total:     12,
				UpdatedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCheckpoint(tt.checkpoint)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalCheckpoint(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.checkpoint.Stage, decoded.Stage)
			assert.Equal(t, tt.checkpoint.City, decoded.City)
			assert.Equal(t, tt.checkpoint.Position, decoded.Position)
			assert.Equal(t, tt.checkpoint.Total, decoded.Total)
			assert.True(t, tt.checkpoint.UpdatedAt.Equal(decoded.UpdatedAt))
		})
	}
}

func TestUnmarshalCheckpoint_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCheckpoint(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestEnrichmentStateSizeMatchesMarshal(t *testing.T) {
	state := core.EnrichmentState{
		OSMID:       "node/555",
		ContentHash: 777,
		Model:       "llama3.2",
		EnrichedAt:  time.Now(),
		Payload:     []byte(`{"duration_minutes":90}`),
	}

	size := EnrichmentStateMUS.Size(state)
	buf := make([]byte, size)
	n := EnrichmentStateMUS.Marshal(state, buf)
	assert.Equal(t, size, n)
}
