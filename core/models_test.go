package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "node/42"},
		{name: "empty string", content: ""},
		{name: "long content", content: "node/42|Narikala Fortress|castle|tbilisi|wikipedia=ka:ნარიყალა"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("node/1")
	id2 := IDFromContent("node/2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestBBoxTiles(t *testing.T) {
	tests := []struct {
		name     string
		bbox     BBox
		step     float64
		wantRows int
		wantCols int
	}{
		{
			name:     "tbilisi at default step",
			bbox:     BBox{North: 41.80, South: 41.65, East: 44.90, West: 44.70},
			step:     0.05,
			wantRows: 3,
			wantCols: 4,
		},
		{
			name:     "uneven box clips last column",
			bbox:     BBox{North: 10.10, South: 10.00, East: 20.07, West: 20.00},
			step:     0.05,
			wantRows: 2,
			wantCols: 2,
		},
		{
			name:     "box smaller than step is one tile",
			bbox:     BBox{North: 10.01, South: 10.00, East: 20.01, West: 20.00},
			step:     0.05,
			wantRows: 1,
			wantCols: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := tt.bbox.Tiles(tt.step)

			if len(tiles) != tt.wantRows*tt.wantCols {
				t.Fatalf("Tiles() returned %d tiles, want %d", len(tiles), tt.wantRows*tt.wantCols)
			}

			last := tiles[len(tiles)-1]
			if last.Row != tt.wantRows-1 || last.Col != tt.wantCols-1 {
				t.Errorf("last tile at (%d,%d), want (%d,%d)", last.Row, last.Col, tt.wantRows-1, tt.wantCols-1)
			}

			for _, tile := range tiles {
				if tile.North > tt.bbox.North+1e-9 || tile.East > tt.bbox.East+1e-9 {
					t.Errorf("tile %s exceeds bbox: north=%f east=%f", tile.Key(), tile.North, tile.East)
				}
				if tile.North <= tile.South || tile.East <= tile.West {
					t.Errorf("tile %s has non-positive extent", tile.Key())
				}
			}
		})
	}
}

func TestBBoxTiles_Degenerate(t *testing.T) {
	if tiles := (BBox{North: 10, South: 10, East: 20, West: 19}).Tiles(0.05); tiles != nil {
		t.Errorf("Tiles() on zero-height box = %d tiles, want none", len(tiles))
	}
	if tiles := (BBox{North: 11, South: 10, East: 20, West: 19}).Tiles(0); tiles != nil {
		t.Errorf("Tiles() with zero step = %d tiles, want none", len(tiles))
	}
}

func TestBBoxCenter(t *testing.T) {
	b := BBox{North: 41.80, South: 41.65, East: 44.90, West: 44.70}
	lat, lon := b.Center()
	if lat < 41.72 || lat > 41.73 {
		t.Errorf("Center() lat = %f, want ~41.725", lat)
	}
	if lon < 44.79 || lon > 44.81 {
		t.Errorf("Center() lon = %f, want ~44.80", lon)
	}
}

func TestTileKey(t *testing.T) {
	tile := Tile{Row: 2, Col: 7}
	if got := tile.Key(); got != "tile_2_7" {
		t.Errorf("Key() = %q, want %q", got, "tile_2_7")
	}
}

func TestPOIContentHash(t *testing.T) {
	poi := &POI{
		OSMID:    "node/42",
		Name:     "Narikala Fortress",
		Category: "castle",
		City:     "tbilisi",
		Tags:     map[string]string{"wikipedia": "en:Narikala", "website": "https://example.ge"},
	}

	other := &POI{
		OSMID:    "node/42",
		Name:     "Narikala Fortress",
		Category: "castle",
		City:     "tbilisi",
		Tags:     map[string]string{"website": "https://example.ge", "wikipedia": "en:Narikala"},
	}

	if poi.ContentHash() != other.ContentHash() {
		t.Error("ContentHash() differs for identical POIs with different tag insertion order")
	}

	other.Name = "Narikala"
	if poi.ContentHash() == other.ContentHash() {
		t.Error("ContentHash() identical after name change")
	}
}

func TestNormalizePersonaScores(t *testing.T) {
	in := map[string]int{
		PersonaCulturalExplorer: 120,
		PersonaBeachLover:       -10,
		"verbose_tourist":       99,
	}

	out := NormalizePersonaScores(in)

	if len(out) != len(Personas()) {
		t.Fatalf("NormalizePersonaScores() returned %d personas, want %d", len(out), len(Personas()))
	}
	if out[PersonaCulturalExplorer] != 100 {
		t.Errorf("cultural_explorer = %d, want clamped 100", out[PersonaCulturalExplorer])
	}
	if out[PersonaBeachLover] != 0 {
		t.Errorf("beach_lover = %d, want clamped 0", out[PersonaBeachLover])
	}
	if out[PersonaWellnessRetreater] != DefaultPersonaScore {
		t.Errorf("wellness_retreater = %d, want default %d", out[PersonaWellnessRetreater], DefaultPersonaScore)
	}
	if _, ok := out["verbose_tourist"]; ok {
		t.Error("unknown persona key survived normalization")
	}
}
