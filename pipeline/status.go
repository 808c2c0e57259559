package pipeline

import (
	"context"
	"fmt"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/enrich"
	"github.com/poiesic/poirit/load"
	"github.com/poiesic/poirit/storage"
)

// checkpointStages are the stages that persist progress records.
var checkpointStages = []string{enrich.CheckpointStage, load.CheckpointStage}

// CityStatus combines a city's layer counts with any in-flight stage
// checkpoints.
type CityStatus struct {
	core.LayerStatus
	Checkpoints []core.Checkpoint `json:"checkpoints,omitempty"`
}

// CollectStatus summarizes one city. Missing layers report zero
// counts; a nil state store skips checkpoints.
func CollectStatus(ctx context.Context, store storage.LayerStore, state storage.StateStore, city string) (*CityStatus, error) {
	layers, err := store.Status(city)
	if err != nil {
		return nil, fmt.Errorf("layer status for %s: %w", city, err)
	}
	status := &CityStatus{LayerStatus: *layers}

	if state == nil {
		return status, nil
	}
	for _, stage := range checkpointStages {
		cp, err := state.LoadCheckpoint(ctx, stage, city)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %s/%s: %w", stage, city, err)
		}
		if cp != nil {
			status.Checkpoints = append(status.Checkpoints, *cp)
		}
	}
	return status, nil
}

// CollectAll summarizes every city present in any layer, sorted by
// slug.
func CollectAll(ctx context.Context, store storage.LayerStore, state storage.StateStore) ([]CityStatus, error) {
	cities, err := store.Cities()
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	out := make([]CityStatus, 0, len(cities))
	for _, city := range cities {
		status, err := CollectStatus(ctx, store, state, city)
		if err != nil {
			return nil, err
		}
		out = append(out, *status)
	}
	return out, nil
}
