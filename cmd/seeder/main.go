// Seeder writes synthetic bronze tiles for a city so the downstream
// stages can be exercised without touching Overpass. Output is
// deterministic for a given seed.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/harvest"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/storage"
	"github.com/poiesic/poirit/storage/layerfs"
)

// poiTemplates cover the tag families the processor keeps, including
// a few that score high in prioritization.
var poiTemplates = []struct {
	key   string
	value string
	names []string
}{
	{"tourism", "museum", []string{"History Museum", "Silk Museum", "Ethnography Museum"}},
	{"tourism", "attraction", []string{"Clock Tower", "Sulfur Baths", "Panorama Point"}},
	{"tourism", "viewpoint", []string{"Fortress Overlook", "River Terrace"}},
	{"historic", "castle", []string{"Old Citadel", "Hilltop Fortress"}},
	{"historic", "monument", []string{"Founders Monument", "Liberty Column"}},
	{"amenity", "restaurant", []string{"Old Town Kitchen", "Vine Cellar", "Mountain Table"}},
	{"amenity", "cafe", []string{"Corner Coffee", "Garden Cafe"}},
	{"amenity", "place_of_worship", []string{"Trinity Cathedral", "Hillside Chapel"}},
	{"leisure", "park", []string{"Central Park", "Riverside Gardens"}},
	{"natural", "spring", []string{"Mineral Spring"}},
}

var (
	dataDir      = flag.String("data-dir", "./data", "pipeline data directory")
	citySlug     = flag.String("city", "tbilisi", "city slug or name from the registry")
	registryPath = flag.String("registry", "", "extra city registry file")
	perTile      = flag.Int("per-tile", 12, "POI elements per tile")
	seed         = flag.Uint64("seed", 42, "PRNG seed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// tileElements fabricates one tile's worth of Overpass elements. The
// batch includes a nameless element and a duplicate so the processor's
// drop and dedupe paths see traffic.
func tileElements(r *rand.Rand, tile core.Tile, count int, nextID *int64) []overpass.Element {
	elements := make([]overpass.Element, 0, count+2)
	for i := 0; i < count; i++ {
		tpl := poiTemplates[r.IntN(len(poiTemplates))]
		name := fmt.Sprintf("%s %d", tpl.names[r.IntN(len(tpl.names))], *nextID%1000)

		tags := map[string]string{
			tpl.key: tpl.value,
			"name":  name,
		}
		if r.IntN(4) == 0 {
			tags["wikipedia"] = "en:" + name
		}
		if r.IntN(3) == 0 {
			tags["opening_hours"] = "09:00-18:00"
		}

		elements = append(elements, overpass.Element{
			Type: "node",
			ID:   *nextID,
			Lat:  tile.South + r.Float64()*(tile.North-tile.South),
			Lon:  tile.West + r.Float64()*(tile.East-tile.West),
			Tags: tags,
		})
		*nextID++
	}

	elements = append(elements, overpass.Element{
		Type: "node",
		ID:   *nextID,
		Lat:  tile.South + r.Float64()*(tile.North-tile.South),
		Lon:  tile.West + r.Float64()*(tile.East-tile.West),
		Tags: map[string]string{"tourism": "attraction"},
	})
	*nextID++
	elements = append(elements, elements[0])

	return elements
}

func main() {
	reg, err := core.LoadRegistry(*registryPath)
	if err != nil {
		panic(err)
	}
	city, err := reg.Lookup(*citySlug)
	if err != nil {
		panic(err)
	}

	store, err := layerfs.Open(*dataDir)
	if err != nil {
		panic(err)
	}

	r := rand.New(rand.NewPCG(*seed, *seed))
	nextID := int64(9_000_000_001)
	started := time.Now().UTC()

	tiles := city.BBox.Tiles(harvest.TileStep)
	meta := &core.HarvestMetadata{
		RunID:     fmt.Sprintf("seed-%d", *seed),
		City:      city.Slug,
		BBox:      city.BBox,
		TileCount: len(tiles),
		Source:    "seeder",
		StartedAt: started,
	}

	for _, tile := range tiles {
		elements := tileElements(r, tile, *perTile, &nextID)
		raw, err := json.MarshalIndent(map[string]any{"elements": elements}, "", "  ")
		if err != nil {
			panic(err)
		}

		err = store.WriteTile(city.Slug, tile.Key(), raw)
		if errors.Is(err, storage.ErrTileExists) {
			slog.Warn("tile already present, skipping", "tile", tile.Key())
			meta.Skipped++
			continue
		}
		if err != nil {
			panic(err)
		}
		meta.Fetched++
		meta.Elements += len(elements)
	}

	meta.FinishedAt = time.Now().UTC()
	if err := store.WriteHarvestMetadata(city.Slug, meta); err != nil {
		panic(err)
	}

	slog.Info("seeded bronze tiles",
		"city", city.Slug,
		"tiles", meta.Fetched,
		"skipped", meta.Skipped,
		"elements", meta.Elements)
}
