// Package harvest implements the bronze stage: it splits a city's
// bounding box into tiles and pulls the tourism-relevant OSM elements
// for each tile from an Overpass endpoint.
//
// Tiles already present in the bronze layer are skipped, so an
// interrupted harvest resumes where it stopped. Each tile is retried
// with exponential backoff on transient Overpass failures; a tile that
// keeps failing is counted and the run moves on. The run summary lands
// in metadata.json next to the tiles.
package harvest
