package overpass

import (
	"strings"
	"testing"

	"github.com/poiesic/poirit/core"
	"github.com/stretchr/testify/assert"
)

func TestTileQuery(t *testing.T) {
	tile := core.Tile{
		Row: 1, Col: 2,
		South: 41.65, West: 44.75, North: 41.70, East: 44.80,
	}

	query := TileQuery(tile)

	assert.Contains(t, query, "[out:json][timeout:25];")
	assert.Contains(t, query, "41.650000,44.750000,41.700000,44.800000")
	assert.Contains(t, query, `node["tourism"]`)
	assert.Contains(t, query, `way["tourism"]`)
	assert.Contains(t, query, `node["historic"]`)
	assert.Contains(t, query, `node["leisure"]`)
	assert.Contains(t, query, `node["natural"]`)
	assert.Contains(t, query, `node["amenity"~"^(restaurant|cafe|bar|pub|fast_food|marketplace|place_of_worship|theatre|cinema|fountain)$"]`)
	assert.True(t, strings.HasSuffix(query, "out center;"), "ways need a representative point")

	// The broad amenity key must never appear unfiltered.
	assert.NotContains(t, query, `node["amenity"](`)
}

func TestPlacesQuery(t *testing.T) {
	query := PlacesQuery("GE", "city", "town")

	assert.Contains(t, query, `area["ISO3166-1"="GE"]->.country;`)
	assert.Contains(t, query, `node["place"="city"](area.country);`)
	assert.Contains(t, query, `node["place"="town"](area.country);`)
	assert.True(t, strings.HasSuffix(query, "out body;"))
}
