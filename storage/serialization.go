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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/poirit/core"
)

// MUS serializers for the state-store value types. Timestamps are
// stored as unix microseconds; the Payload is the raw enrichment JSON.

// EnrichmentStateMUS serializes core.EnrichmentState.
var EnrichmentStateMUS = enrichmentStateMUS{}

type enrichmentStateMUS struct{}

func (enrichmentStateMUS) Marshal(v core.EnrichmentState, bs []byte) (n int) {
	n = ord.String.Marshal(v.OSMID, bs)
	n += varint.Uint64.Marshal(v.ContentHash, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	n += varint.Int64.Marshal(v.EnrichedAt.UnixMicro(), bs[n:])
	n += ord.String.Marshal(string(v.Payload), bs[n:])
	return n
}

func (enrichmentStateMUS) Unmarshal(bs []byte) (v core.EnrichmentState, n int, err error) {
	var n1 int
	v.OSMID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ContentHash, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EnrichedAt = time.UnixMicro(micros).UTC()
	var payload string
	payload, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if payload != "" {
		v.Payload = []byte(payload)
	}
	return
}

func (enrichmentStateMUS) Size(v core.EnrichmentState) (size int) {
	size = ord.String.Size(v.OSMID)
	size += varint.Uint64.Size(v.ContentHash)
	size += ord.String.Size(v.Model)
	size += varint.Int64.Size(v.EnrichedAt.UnixMicro())
	size += ord.String.Size(string(v.Payload))
	return size
}

// CheckpointMUS serializes core.Checkpoint.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(v core.Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.Stage, bs)
	n += ord.String.Marshal(v.City, bs[n:])
	n += varint.Int.Marshal(v.Position, bs[n:])
	n += varint.Int.Marshal(v.Total, bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (v core.Checkpoint, n int, err error) {
	var n1 int
	v.Stage, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.City, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Position, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Total, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

func (checkpointMUS) Size(v core.Checkpoint) (size int) {
	size = ord.String.Size(v.Stage)
	size += ord.String.Size(v.City)
	size += varint.Int.Size(v.Position)
	size += varint.Int.Size(v.Total)
	size += varint.Int64.Size(v.UpdatedAt.UnixMicro())
	return size
}

// MarshalEnrichmentState serializes an EnrichmentState to bytes.
func MarshalEnrichmentState(state *core.EnrichmentState) []byte {
	buf := make([]byte, EnrichmentStateMUS.Size(*state))
	EnrichmentStateMUS.Marshal(*state, buf)
	return buf
}

// UnmarshalEnrichmentState deserializes an EnrichmentState from bytes.
func UnmarshalEnrichmentState(data []byte) (*core.EnrichmentState, error) {
	state, _, err := EnrichmentStateMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &state, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, CheckpointMUS.Size(*checkpoint))
	CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &checkpoint, nil
}
