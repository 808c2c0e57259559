package core

import "time"

// HarvestMetadata summarizes one harvester run, written alongside the
// bronze tiles.
type HarvestMetadata struct {
	RunID      string    `json:"run_id"`
	City       string    `json:"city"`
	BBox       BBox      `json:"bbox"`
	TileCount  int       `json:"tile_count"`
	Fetched    int       `json:"fetched"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Elements   int       `json:"total_elements"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ProcessStats summarizes one processor run, written alongside the
// silver POIs.
type ProcessStats struct {
	City            string         `json:"city"`
	RawElements     int            `json:"raw_elements"`
	Parsed          int            `json:"parsed"`
	Deduplicated    int            `json:"deduplicated"`
	AlreadyEnglish  int            `json:"already_english"`
	OSMEnglish      int            `json:"osm_english"`
	Transliterated  int            `json:"transliterated"`
	DroppedNoName   int            `json:"dropped_no_name"`
	Valid           int            `json:"valid"`
	Rejected        int            `json:"rejected"`
	RejectionCounts map[string]int `json:"rejection_reasons,omitempty"`
	ProcessedAt     time.Time      `json:"processed_at"`
}

// LayerStatus reports how far a city has moved through the pipeline.
type LayerStatus struct {
	City           string     `json:"city"`
	BronzeTiles    int        `json:"bronze_tiles"`
	BronzeElements int        `json:"bronze_elements"`
	SilverPOIs     int        `json:"silver_pois"`
	GoldEnriched   int        `json:"gold_enriched"`
	HasDestination bool       `json:"has_destination"`
	HarvestedAt    *time.Time `json:"harvested_at,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
}
