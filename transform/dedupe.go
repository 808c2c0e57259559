package transform

import (
	"strings"

	"github.com/poiesic/poirit/core"
)

// Dedupe removes duplicate POIs in two passes. Identical OSM IDs (the
// same way caught by neighboring tile queries) keep the first record
// seen. Distinct elements sharing a lowercased name and category are
// treated as one place; the record with more tags wins, in the slot of
// the first occurrence so output order stays stable.
func Dedupe(pois []*core.POI) []*core.POI {
	seenID := make(map[string]bool, len(pois))
	unique := make([]*core.POI, 0, len(pois))
	for _, p := range pois {
		if seenID[p.OSMID] {
			continue
		}
		seenID[p.OSMID] = true
		unique = append(unique, p)
	}

	type placeKey struct {
		name     string
		category string
	}
	slot := make(map[placeKey]int, len(unique))
	out := make([]*core.POI, 0, len(unique))
	for _, p := range unique {
		key := placeKey{strings.ToLower(p.Name), p.Category}
		if i, seen := slot[key]; seen {
			if len(p.Tags) > len(out[i].Tags) {
				out[i] = p
			}
			continue
		}
		slot[key] = len(out)
		out = append(out, p)
	}
	return out
}
