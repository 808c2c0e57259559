package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for state-store entries.
// It is generated by content-based hashing so identical input always
// maps to the same key.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// BBox is a geographic bounding box in WGS84 degrees.
type BBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lat, lon float64) {
	return (b.North + b.South) / 2, (b.East + b.West) / 2
}

// Contains reports whether the point lies inside the box expanded by pad
// degrees on every side.
func (b BBox) Contains(lat, lon, pad float64) bool {
	return lat >= b.South-pad && lat <= b.North+pad &&
		lon >= b.West-pad && lon <= b.East+pad
}

// Tiles splits the box into step×step degree tiles. The last row and
// column are clipped to the box edge, so edge tiles may be smaller than
// step. Tile edges are computed from indices rather than accumulated,
// so float drift cannot produce sliver rows. A degenerate box yields no
// tiles.
func (b BBox) Tiles(step float64) []Tile {
	if step <= 0 || b.North <= b.South || b.East <= b.West {
		return nil
	}
	rows := int(math.Ceil((b.North-b.South)/step - 1e-9))
	cols := int(math.Ceil((b.East-b.West)/step - 1e-9))
	tiles := make([]Tile, 0, rows*cols)
	for r := 0; r < rows; r++ {
		south := b.South + float64(r)*step
		for c := 0; c < cols; c++ {
			west := b.West + float64(c)*step
			tiles = append(tiles, Tile{
				Row:   r,
				Col:   c,
				South: south,
				West:  west,
				North: min(south+step, b.North),
				East:  min(west+step, b.East),
			})
		}
	}
	return tiles
}

// Tile is one cell of a tiled bounding box.
type Tile struct {
	Row   int
	Col   int
	South float64
	West  float64
	North float64
	East  float64
}

// Key returns the stable tile identifier used in bronze file names.
func (t Tile) Key() string {
	return fmt.Sprintf("tile_%d_%d", t.Row, t.Col)
}

// City is a harvestable destination with its bounding box.
type City struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Country string `json:"country"`
	BBox    BBox   `json:"bbox"`
}

// POI is a cleaned point-of-interest record in the silver layer.
type POI struct {
	OSMID     string            `json:"osm_id"`
	Name      string            `json:"name"`
	LocalName string            `json:"local_name,omitempty"`
	Category  string            `json:"category"`
	Lat       float64           `json:"lat"`
	Lon       float64           `json:"lon"`
	Tags      map[string]string `json:"tags,omitempty"`
	City      string            `json:"city,omitempty"`
	Priority  int               `json:"priority_score,omitempty"`
}

// ContentKey returns the canonical text of the fields that feed
// enrichment. Two POIs with equal content keys would produce the same
// prompt, so the cached enrichment for one is valid for the other.
func (p *POI) ContentKey() string {
	keys := make([]string, 0, len(p.Tags))
	for k := range p.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(p.OSMID)
	sb.WriteByte('|')
	sb.WriteString(p.Name)
	sb.WriteByte('|')
	sb.WriteString(p.Category)
	sb.WriteByte('|')
	sb.WriteString(p.City)
	for _, k := range keys {
		sb.WriteByte('|')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(p.Tags[k])
	}
	return sb.String()
}

// ContentHash returns the BLAKE2b digest of the content key.
func (p *POI) ContentHash() ID {
	return IDFromContent(p.ContentKey())
}

// Enrichment holds the LLM-generated (or fallback) travel metadata for
// a POI.
type Enrichment struct {
	Description    string         `json:"description"`
	DurationMin    int            `json:"duration_min"`
	BestTime       string         `json:"best_time"`
	BestTimeReason string         `json:"best_time_reason,omitempty"`
	PriceLevel     int            `json:"price_level"`
	PersonaScores  map[string]int `json:"persona_scores"`
	Tips           []string       `json:"tips,omitempty"`
	WhatToExpect   string         `json:"what_to_expect,omitempty"`
	IsPopular      bool           `json:"is_popular"`
	Source         string         `json:"source"`
	EnrichedAt     time.Time      `json:"enriched_at"`
}

// EnrichedPOI is a POI plus its enrichment, the gold-layer record.
type EnrichedPOI struct {
	POI
	Enrichment Enrichment `json:"enrichment"`
}

// Visit-time values the enricher may emit.
const (
	BestTimeMorning   = "morning"
	BestTimeAfternoon = "afternoon"
	BestTimeEvening   = "evening"
	BestTimeNight     = "night"
	BestTimeAny       = "any"
)

// Price levels run from free to expensive.
const (
	PriceFree = iota
	PriceBudget
	PriceMidRange
	PriceExpensive
)

// MonthlyInsight describes one calendar month at a destination.
type MonthlyInsight struct {
	Verdict    string `json:"verdict"`
	AvgTempC   int    `json:"avg_temp_c"`
	CrowdLevel string `json:"crowd_level"`
}

// Budget describes the cost profile of a destination.
type Budget struct {
	Level     string         `json:"level"`
	DailyCost map[string]int `json:"daily_cost,omitempty"` // tier → USD per day
}

// Safety describes how safe a destination is, score in [0,1].
type Safety struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes,omitempty"`
}

// Connectivity describes internet and mobile coverage quality.
type Connectivity struct {
	WiFi   string `json:"wifi,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// Destination is the city-level gold record.
type Destination struct {
	Slug            string                 `json:"slug"`
	Name            string                 `json:"name"`
	Country         string                 `json:"country"`
	CountryCode     string                 `json:"country_code"`
	Lat             float64                `json:"lat"`
	Lon             float64                `json:"lon"`
	Timezone        string                 `json:"timezone,omitempty"`
	Population      int64                  `json:"population,omitempty"`
	Currency        string                 `json:"currency,omitempty"`
	ImageURL        string                 `json:"image_url,omitempty"`
	WikidataID      string                 `json:"wikidata_id,omitempty"`
	Summary         string                 `json:"summary"`
	WhyGo           []string               `json:"why_go,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	BestMonths      []int                  `json:"best_months,omitempty"`
	MonthlyInsights map[int]MonthlyInsight `json:"monthly_insights,omitempty"`
	PersonaFit      map[string]int         `json:"persona_fit,omitempty"`
	Budget          Budget                 `json:"budget"`
	Safety          Safety                 `json:"safety"`
	Connectivity    Connectivity           `json:"connectivity"`
	Source          string                 `json:"source"`
	EnrichedAt      time.Time              `json:"enriched_at"`
}

// Checkpoint records how far a long-running stage has progressed for a
// city, so an operator can see where an interrupted run stopped.
type Checkpoint struct {
	Stage     string
	City      string
	Position  int
	Total     int
	UpdatedAt time.Time
}

// EnrichmentState is the state-store record for one enriched POI: the
// content hash it was computed from, the model that produced it, and
// the serialized enrichment payload.
type EnrichmentState struct {
	OSMID       string
	ContentHash uint64
	Model       string
	EnrichedAt  time.Time
	Payload     []byte
}
