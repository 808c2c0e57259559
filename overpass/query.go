package overpass

import (
	"fmt"
	"strings"

	"github.com/poiesic/poirit/core"
)

// Tag families that mark an element as tourism-relevant. The amenity
// key is too broad to take whole (it includes parking lots and toilets)
// so it is narrowed to a curated subset.
var (
	wholesaleKeys = []string{"tourism", "historic", "leisure", "natural"}

	amenitySubset = []string{
		"restaurant", "cafe", "bar", "pub", "fast_food",
		"marketplace", "place_of_worship", "theatre", "cinema", "fountain",
	}
)

// TileQuery builds the QL query harvesting all tourism-relevant
// elements inside one tile. "out center" makes ways and relations carry
// a representative point.
func TileQuery(tile core.Tile) string {
	bbox := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", tile.South, tile.West, tile.North, tile.East)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, key := range wholesaleKeys {
		fmt.Fprintf(&b, "  node[%q](%s);\n", key, bbox)
		fmt.Fprintf(&b, "  way[%q](%s);\n", key, bbox)
	}
	amenityRe := fmt.Sprintf("^(%s)$", strings.Join(amenitySubset, "|"))
	fmt.Fprintf(&b, "  node[\"amenity\"~%q](%s);\n", amenityRe, bbox)
	fmt.Fprintf(&b, "  way[\"amenity\"~%q](%s);\n", amenityRe, bbox)
	b.WriteString(");\nout center;")
	return b.String()
}

// PlacesQuery builds the QL query listing settlement nodes of the given
// place types (city, town) inside a country, identified by its
// ISO 3166-1 alpha-2 code.
func PlacesQuery(countryCode string, placeTypes ...string) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:60];\n")
	fmt.Fprintf(&b, "area[\"ISO3166-1\"=%q]->.country;\n(\n", countryCode)
	for _, place := range placeTypes {
		fmt.Fprintf(&b, "  node[\"place\"=%q](area.country);\n", place)
	}
	b.WriteString(");\nout body;")
	return b.String()
}
