// Package discover finds harvestable destinations for a country. It
// lists settlement nodes from Overpass, filters them by population,
// synthesizes a bounding box around each center, and optionally pulls
// Wikidata facts for the survivors. The result renders as a registry
// snippet ready to merge into the city registry file.
package discover
