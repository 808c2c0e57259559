// Package wikidata fetches city facts (population, currency, image,
// coordinates) from the Wikidata SPARQL endpoint.
package wikidata
