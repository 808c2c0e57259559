package wikidata

import "errors"

var (
	// ErrNoResults is returned when the query matched no entity.
	ErrNoResults = errors.New("no wikidata results")

	// ErrBadStatus is returned on a non-200 response.
	ErrBadStatus = errors.New("wikidata request rejected")

	// ErrMalformedResponse is returned when the body is not valid
	// SPARQL JSON.
	ErrMalformedResponse = errors.New("malformed wikidata response")

	// ErrInvalidWKT is returned when a coordinate literal is not a
	// well-formed WKT point.
	ErrInvalidWKT = errors.New("invalid WKT point")
)
