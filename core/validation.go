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

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Name length bounds for the data-quality gate.
const (
	MinNameLength = 2
	MaxNameLength = 100
)

// BBoxPadding is how far outside the city bounding box a POI may sit,
// in degrees, before it is rejected. Tile queries clip at the box edge
// but way centers can land slightly outside it.
const BBoxPadding = 0.1

var (
	englishNameRe = regexp.MustCompile(`^[A-Za-z0-9\s'.,&()-]+$`)

	digitsOnlyRe   = regexp.MustCompile(`^\d+$`)
	upperCodeRe    = regexp.MustCompile(`^[A-Z\s]+$`)
	shortCodeRe    = regexp.MustCompile(`^[a-z]{1,2}$`)
	duplicateRe    = regexp.MustCompile(`\((duplicate|copy|2|old)\)`)
	placeholderSub = []string{"test", "unknown", "unnamed"}
)

// Lone occurrences of these words carry no identifying content.
var genericTerms = map[string]bool{
	"restaurant": true, "cafe": true, "hotel": true, "museum": true,
	"park": true, "church": true, "cathedral": true, "mosque": true,
	"temple": true, "square": true, "street": true, "avenue": true,
	"market": true, "shop": true, "store": true, "center": true,
	"theatre": true, "cinema": true, "bar": true, "pub": true,
	"club": true, "gallery": true, "library": true, "station": true,
}

// ValidatePOI applies the data-quality gate to a single POI.
//
// Rules:
//   - Name present, length within [MinNameLength, MaxNameLength]
//   - Name in English script (post-translation)
//   - Name not a placeholder, code, lone generic term, or duplicate
//   - Category present and in English script
//   - Coordinates in range and not exactly (0,0)
//
// Position relative to the city bounding box is checked separately by
// ValidatePOIWithin, since not every caller knows the box.
func ValidatePOI(poi *POI) error {
	if poi == nil {
		return fmt.Errorf("%w: poi is nil", ErrInvalidPOI)
	}

	name := strings.TrimSpace(poi.Name)
	if name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPOI, ErrMissingName)
	}
	if n := utf8.RuneCountInString(name); n < MinNameLength {
		return fmt.Errorf("%w: %w (%d chars)", ErrInvalidPOI, ErrNameTooShort, n)
	} else if n > MaxNameLength {
		return fmt.Errorf("%w: %w (%d chars)", ErrInvalidPOI, ErrNameTooLong, n)
	}
	if !IsEnglishText(name) {
		return fmt.Errorf("%w: %w (detected: %s)", ErrInvalidPOI, ErrNonEnglishName, DetectScript(name))
	}
	if IsSuspiciousName(name) {
		return fmt.Errorf("%w: %w", ErrInvalidPOI, ErrSuspiciousName)
	}
	if isGenericName(name) {
		return fmt.Errorf("%w: %w", ErrInvalidPOI, ErrGenericName)
	}
	if duplicateRe.MatchString(strings.ToLower(name)) {
		return fmt.Errorf("%w: %w", ErrInvalidPOI, ErrDuplicateMarker)
	}

	cat := strings.TrimSpace(poi.Category)
	if cat == "" || !IsEnglishText(strings.ReplaceAll(cat, "_", " ")) {
		return fmt.Errorf("%w: %w", ErrInvalidPOI, ErrMissingCategory)
	}

	if !ValidCoordinates(poi.Lat, poi.Lon) {
		return fmt.Errorf("%w: %w (%f, %f)", ErrInvalidPOI, ErrInvalidCoordinates, poi.Lat, poi.Lon)
	}

	return nil
}

// ValidatePOIWithin runs ValidatePOI and additionally rejects POIs
// outside bbox padded by BBoxPadding degrees.
func ValidatePOIWithin(poi *POI, bbox BBox) error {
	if err := ValidatePOI(poi); err != nil {
		return err
	}
	if !bbox.Contains(poi.Lat, poi.Lon, BBoxPadding) {
		return fmt.Errorf("%w: %w (%f, %f)", ErrInvalidPOI, ErrOutsideBBox, poi.Lat, poi.Lon)
	}
	return nil
}

// ValidateBBox checks that a bounding box has positive extent in both
// dimensions and edges within coordinate range.
func ValidateBBox(b BBox) error {
	if b.North <= b.South || b.East <= b.West {
		return fmt.Errorf("%w: degenerate extent", ErrInvalidBBox)
	}
	if b.North > 90 || b.South < -90 || b.East > 180 || b.West < -180 {
		return fmt.Errorf("%w: edges out of range", ErrInvalidBBox)
	}
	return nil
}

// IsEnglishText reports whether text contains only English letters,
// digits, and common punctuation.
func IsEnglishText(text string) bool {
	return englishNameRe.MatchString(text)
}

// IsSuspiciousName reports whether a name matches a junk pattern:
// digits only, an all-uppercase code, a one-or-two-letter code, or a
// test/unknown/unnamed placeholder.
func IsSuspiciousName(name string) bool {
	lower := strings.ToLower(name)
	if digitsOnlyRe.MatchString(name) || upperCodeRe.MatchString(name) || shortCodeRe.MatchString(lower) {
		return true
	}
	for _, sub := range placeholderSub {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// ValidCoordinates reports whether (lat, lon) is a plausible location:
// in WGS84 range and not exactly the null island origin.
func ValidCoordinates(lat, lon float64) bool {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	return !(lat == 0 && lon == 0)
}

func isGenericName(name string) bool {
	words := strings.Fields(strings.ToLower(name))
	return len(words) == 1 && genericTerms[words[0]]
}

// Script ranges checked by DetectScript when a name fails the English
// gate.
var scriptRanges = []struct {
	name string
	re   *regexp.Regexp
}{
	{"georgian", regexp.MustCompile(`[\x{10A0}-\x{10FF}]`)},
	{"cyrillic", regexp.MustCompile(`[\x{0400}-\x{04FF}]`)},
	{"arabic", regexp.MustCompile(`[\x{0600}-\x{06FF}]`)},
	{"chinese", regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)},
	{"japanese", regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}]`)},
	{"korean", regexp.MustCompile(`[\x{AC00}-\x{D7AF}]`)},
}

// DetectScript names the first non-English script found in text, or
// "unknown" when none of the known ranges match.
func DetectScript(text string) string {
	for _, s := range scriptRanges {
		if s.re.MatchString(text) {
			return s.name
		}
	}
	return "unknown"
}
