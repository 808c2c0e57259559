package wikidata

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseWKTPoint parses a WKT point literal as Wikidata emits them,
// e.g. "Point(44.7930 41.7151)". WKT puts longitude first.
func ParseWKTPoint(wkt string) (lat, lon float64, err error) {
	s := strings.TrimSpace(wkt)
	if !strings.HasPrefix(s, "Point(") || !strings.HasSuffix(s, ")") {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWKT, wkt)
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "Point("), ")")

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWKT, wkt)
	}
	lon, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWKT, wkt)
	}
	lat, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWKT, wkt)
	}
	return lat, lon, nil
}
