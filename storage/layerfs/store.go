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


// Package layerfs stores the medallion layers as plain JSON files under
// a single data directory:
//
//	<dataDir>/bronze/<city>/tile_<row>_<col>.json
//	<dataDir>/bronze/<city>/metadata.json
//	<dataDir>/silver/<city>/pois.json
//	<dataDir>/silver/<city>/stats.json
//	<dataDir>/gold/<city>/pois_enriched.json
//	<dataDir>/gold/<city>/destination.json
//
// Files are the contract between stages, so every write goes through a
// temp file and an atomic rename. Partial output from a crashed run is
// never visible to the next stage.
package layerfs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/storage"
)

const (
	bronzeDir = "bronze"
	silverDir = "silver"
	goldDir   = "gold"

	metadataFile    = "metadata.json"
	poisFile        = "pois.json"
	statsFile       = "stats.json"
	enrichedFile    = "pois_enriched.json"
	destinationFile = "destination.json"

	tilePrefix = "tile_"
	tileSuffix = ".json"
)

type store struct {
	root string
	mu   sync.Mutex
}

var _ storage.LayerStore = (*store)(nil)

// Open creates the layer directories under dataDir and returns a
// LayerStore rooted there.
func Open(dataDir string) (storage.LayerStore, error) {
	for _, layer := range []string{bronzeDir, silverDir, goldDir} {
		if err := os.MkdirAll(filepath.Join(dataDir, layer), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create layer directory: %w", err)
		}
	}
	return &store{root: dataDir}, nil
}

func (s *store) cityDir(layer, city string) string {
	return filepath.Join(s.root, layer, city)
}

func (s *store) TileExists(city, tileKey string) bool {
	_, err := os.Stat(filepath.Join(s.cityDir(bronzeDir, city), tileKey+tileSuffix))
	return err == nil
}

func (s *store) WriteTile(city, tileKey string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.cityDir(bronzeDir, city)
	path := filepath.Join(dir, tileKey+tileSuffix)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", storage.ErrTileExists, tileKey)
	}
	return writeAtomic(dir, path, raw)
}

func (s *store) TileKeys(city string) ([]string, error) {
	entries, err := os.ReadDir(s.cityDir(bronzeDir, city))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no bronze data for %s", storage.ErrNotFound, city)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, tilePrefix) || !strings.HasSuffix(name, tileSuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, tileSuffix))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *store) ReadTile(city, tileKey string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.cityDir(bronzeDir, city), tileKey+tileSuffix))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: tile %s for %s", storage.ErrNotFound, tileKey, city)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tile: %w", err)
	}
	return data, nil
}

func (s *store) WriteHarvestMetadata(city string, meta *core.HarvestMetadata) error {
	return s.writeJSON(bronzeDir, city, metadataFile, meta)
}

func (s *store) ReadHarvestMetadata(city string) (*core.HarvestMetadata, error) {
	var meta core.HarvestMetadata
	if err := s.readJSON(bronzeDir, city, metadataFile, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *store) WritePOIs(city string, pois []core.POI) error {
	return s.writeJSON(silverDir, city, poisFile, pois)
}

func (s *store) ReadPOIs(city string) ([]core.POI, error) {
	var pois []core.POI
	if err := s.readJSON(silverDir, city, poisFile, &pois); err != nil {
		return nil, err
	}
	return pois, nil
}

func (s *store) WriteProcessStats(city string, stats *core.ProcessStats) error {
	return s.writeJSON(silverDir, city, statsFile, stats)
}

func (s *store) ReadProcessStats(city string) (*core.ProcessStats, error) {
	var stats core.ProcessStats
	if err := s.readJSON(silverDir, city, statsFile, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *store) WriteEnriched(city string, pois []core.EnrichedPOI) error {
	return s.writeJSON(goldDir, city, enrichedFile, pois)
}

func (s *store) ReadEnriched(city string) ([]core.EnrichedPOI, error) {
	var pois []core.EnrichedPOI
	if err := s.readJSON(goldDir, city, enrichedFile, &pois); err != nil {
		return nil, err
	}
	return pois, nil
}

func (s *store) WriteDestination(city string, dest *core.Destination) error {
	return s.writeJSON(goldDir, city, destinationFile, dest)
}

func (s *store) ReadDestination(city string) (*core.Destination, error) {
	var dest core.Destination
	if err := s.readJSON(goldDir, city, destinationFile, &dest); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (s *store) Cities() ([]string, error) {
	seen := map[string]bool{}
	for _, layer := range []string{bronzeDir, silverDir, goldDir} {
		entries, err := os.ReadDir(filepath.Join(s.root, layer))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s layer: %w", layer, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				seen[entry.Name()] = true
			}
		}
	}

	cities := make([]string, 0, len(seen))
	for city := range seen {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities, nil
}

func (s *store) Status(city string) (*core.LayerStatus, error) {
	status := &core.LayerStatus{City: city}

	if keys, err := s.TileKeys(city); err == nil {
		status.BronzeTiles = len(keys)
	}
	if meta, err := s.ReadHarvestMetadata(city); err == nil {
		status.BronzeElements = meta.Elements
		if !meta.FinishedAt.IsZero() {
			status.HarvestedAt = &meta.FinishedAt
		}
	}
	if pois, err := s.ReadPOIs(city); err == nil {
		status.SilverPOIs = len(pois)
	}
	if stats, err := s.ReadProcessStats(city); err == nil {
		if !stats.ProcessedAt.IsZero() {
			status.ProcessedAt = &stats.ProcessedAt
		}
	}
	if enriched, err := s.ReadEnriched(city); err == nil {
		for _, poi := range enriched {
			if poi.Enrichment.Source != "" {
				status.GoldEnriched++
			}
		}
	}
	if _, err := s.ReadDestination(city); err == nil {
		status.HasDestination = true
	}

	return status, nil
}

func (s *store) writeJSON(layer, city, file string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	dir := s.cityDir(layer, city)
	return writeAtomic(dir, filepath.Join(dir, file), data)
}

func (s *store) readJSON(layer, city, file string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.cityDir(layer, city), file))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s/%s/%s", storage.ErrNotFound, layer, city, file)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", storage.ErrCorruptLayer, file, err)
	}
	return nil
}

// writeAtomic writes data to a temp file in dir and renames it over
// path. The rename is atomic on POSIX filesystems.
func writeAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
