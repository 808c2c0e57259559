// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidPOI indicates a POI failed the data-quality gate.
	ErrInvalidPOI = errors.New("invalid poi")

	// ErrMissingName indicates the Name field is empty.
	ErrMissingName = errors.New("missing name")

	// ErrNameTooShort indicates the name is below the minimum length.
	ErrNameTooShort = errors.New("name too short")

	// ErrNameTooLong indicates the name exceeds the maximum length.
	ErrNameTooLong = errors.New("name too long")

	// ErrNonEnglishName indicates the name contains non-English script.
	ErrNonEnglishName = errors.New("non-english name")

	// ErrSuspiciousName indicates the name matches a placeholder or
	// junk pattern.
	ErrSuspiciousName = errors.New("suspicious name pattern")

	// ErrGenericName indicates the name is a lone generic term with no
	// identifying content.
	ErrGenericName = errors.New("name lacks meaningful content")

	// ErrDuplicateMarker indicates the name carries a duplicate marker
	// such as "(copy)".
	ErrDuplicateMarker = errors.New("duplicate marker in name")

	// ErrMissingCategory indicates the Category field is empty or not
	// English.
	ErrMissingCategory = errors.New("invalid or missing category")

	// ErrInvalidCoordinates indicates coordinates are out of range or
	// exactly (0,0).
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrOutsideBBox indicates coordinates fall outside the city
	// bounding box.
	ErrOutsideBBox = errors.New("coordinates outside city bounds")

	// ErrUnknownCity indicates the city slug is not in the registry.
	ErrUnknownCity = errors.New("unknown city")

	// ErrInvalidBBox indicates a bounding box with inverted or equal
	// edges.
	ErrInvalidBBox = errors.New("invalid bounding box")
)
