// Package transform turns raw Overpass elements into the validated
// silver POI set: normalization into the POI schema, English name
// resolution (tags, then transliteration), deduplication across tiles,
// and the data-quality gate.
package transform
