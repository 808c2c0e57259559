package overpass

import (
	"encoding/json"
	"fmt"
)

// Element is one OSM element from an Overpass response. Nodes carry
// their own coordinates; ways and relations queried with "out center"
// carry a representative point instead.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Center is the representative point of a way or relation.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OSMID returns the element's stable identifier, e.g. "node/123456".
func (e *Element) OSMID() string {
	return fmt.Sprintf("%s/%d", e.Type, e.ID)
}

// Coordinates returns the element's point. For nodes that is the node
// position; for ways and relations the center. ok is false when the
// element carries neither.
func (e *Element) Coordinates() (lat, lon float64, ok bool) {
	if e.Type == "node" {
		return e.Lat, e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// Tag returns the value of an OSM tag, or "" if absent.
func (e *Element) Tag(key string) string {
	return e.Tags[key]
}

// response is the wire shape of an Overpass JSON document.
type response struct {
	Elements []Element `json:"elements"`
}

// ParseElements decodes the elements array of an Overpass JSON
// document. The processor uses it to read back archived bronze tiles.
func ParseElements(raw []byte) ([]Element, error) {
	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return parsed.Elements, nil
}

// Result holds one Overpass response in raw and parsed form. Raw is
// the exact body as received, suitable for archiving.
type Result struct {
	Raw      []byte
	Elements []Element
}
