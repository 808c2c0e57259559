package transform

import (
	"fmt"
	"strings"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/overpass"
)

// Category tag precedence. The first key present on an element names
// its category.
var categoryKeys = [...]string{"tourism", "amenity", "historic", "leisure", "natural"}

// historic= values that stay categories in their own right. Anything
// else under the key collapses to plain "historic".
var historicKinds = map[string]bool{
	"castle":              true,
	"ruins":               true,
	"monument":            true,
	"memorial":            true,
	"archaeological_site": true,
	"fort":                true,
	"church":              true,
	"monastery":           true,
	"tower":               true,
}

// Tags copied from the element onto the POI. Everything else stays
// behind in the bronze tile.
var curatedTags = [...]string{"website", "wikipedia", "wikidata", "opening_hours", "phone", "cuisine", "fee"}

// NormalizeElement converts one Overpass element into a POI with an
// English display name; the NameSource return tells how the name was
// obtained. When the original name differs from the resolved one it is
// kept as LocalName. Elements that cannot become POIs return ErrNoName
// (no name at all), ErrNameNotResolvable, or ErrNoCoordinates.
func NormalizeElement(el *overpass.Element) (*core.POI, NameSource, error) {
	raw := strings.TrimSpace(el.Tag("name"))
	name, source := ResolveName(raw, el.Tags)
	if source == NameUnresolved {
		if raw == "" {
			return nil, source, fmt.Errorf("%w: %s", ErrNoName, el.OSMID())
		}
		return nil, source, fmt.Errorf("%w: %s (%q)", ErrNameNotResolvable, el.OSMID(), raw)
	}

	lat, lon, ok := el.Coordinates()
	if !ok {
		return nil, source, fmt.Errorf("%w: %s", ErrNoCoordinates, el.OSMID())
	}

	poi := &core.POI{
		OSMID:    el.OSMID(),
		Name:     name,
		Category: Category(el.Tags),
		Lat:      lat,
		Lon:      lon,
	}
	if raw != "" && raw != name {
		poi.LocalName = raw
	}
	for _, key := range curatedTags {
		if v := el.Tag(key); v != "" {
			if poi.Tags == nil {
				poi.Tags = make(map[string]string, len(curatedTags))
			}
			poi.Tags[key] = v
		}
	}
	return poi, source, nil
}

// Category derives the canonical category from an element's tags, or
// "unknown" when no category key is present. A bare "yes" value does
// not name a category and defers to lower-precedence keys, except for
// historic=yes which still means historic.
func Category(tags map[string]string) string {
	for _, key := range categoryKeys {
		v := tags[key]
		if v == "" {
			continue
		}
		switch {
		case key == "historic":
			if historicKinds[v] {
				return v
			}
			return "historic"
		case v == "yes":
			// not a category, try the next key
		default:
			return strings.ToLower(v)
		}
	}
	return "unknown"
}
