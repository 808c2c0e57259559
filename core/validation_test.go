package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePOI(t *testing.T) {
	valid := func() *POI {
		return &POI{
			OSMID:    "node/100",
			Name:     "Narikala Fortress",
			Category: "castle",
			Lat:      41.688,
			Lon:      44.809,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*POI)
		poi     *POI
		wantErr error
	}{
		{
			name:    "valid poi",
			mutate:  func(p *POI) {},
			wantErr: nil,
		},
		{
			name:    "nil poi",
			poi:     nil,
			wantErr: ErrInvalidPOI,
		},
		{
			name:    "missing name",
			mutate:  func(p *POI) { p.Name = "   " },
			wantErr: ErrMissingName,
		},
		{
			name:    "name too short",
			mutate:  func(p *POI) { p.Name = "A" },
			wantErr: ErrNameTooShort,
		},
		{
			name:    "name too long",
			mutate:  func(p *POI) { p.Name = strings.Repeat("a", 101) },
			wantErr: ErrNameTooLong,
		},
		{
			name:    "georgian script name",
			mutate:  func(p *POI) { p.Name = "ნარიყალა" },
			wantErr: ErrNonEnglishName,
		},
		{
			name:    "cyrillic script name",
			mutate:  func(p *POI) { p.Name = "Крепость" },
			wantErr: ErrNonEnglishName,
		},
		{
			name:    "digits only name",
			mutate:  func(p *POI) { p.Name = "12345" },
			wantErr: ErrSuspiciousName,
		},
		{
			name:    "all uppercase code",
			mutate:  func(p *POI) { p.Name = "WC BLOCK" },
			wantErr: ErrSuspiciousName,
		},
		{
			name:    "placeholder name",
			mutate:  func(p *POI) { p.Name = "Unnamed road" },
			wantErr: ErrSuspiciousName,
		},
		{
			name:    "lone generic term",
			mutate:  func(p *POI) { p.Name = "Restaurant" },
			wantErr: ErrGenericName,
		},
		{
			name:    "duplicate marker",
			mutate:  func(p *POI) { p.Name = "Old Bridge (copy)" },
			wantErr: ErrDuplicateMarker,
		},
		{
			name:    "missing category",
			mutate:  func(p *POI) { p.Category = "" },
			wantErr: ErrMissingCategory,
		},
		{
			name:    "non-english category",
			mutate:  func(p *POI) { p.Category = "მუზეუმი" },
			wantErr: ErrMissingCategory,
		},
		{
			name:    "latitude out of range",
			mutate:  func(p *POI) { p.Lat = 91 },
			wantErr: ErrInvalidCoordinates,
		},
		{
			name:    "null island",
			mutate:  func(p *POI) { p.Lat, p.Lon = 0, 0 },
			wantErr: ErrInvalidCoordinates,
		},
		{
			name:    "underscore category passes",
			mutate:  func(p *POI) { p.Category = "place_of_worship" },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poi := tt.poi
			if tt.mutate != nil {
				poi = valid()
				tt.mutate(poi)
			}

			err := ValidatePOI(poi)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePOI() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidatePOI() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePOI() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidPOI) {
				t.Errorf("ValidatePOI() error = %v, want it wrapped in %v", err, ErrInvalidPOI)
			}
		})
	}
}

func TestValidatePOIWithin(t *testing.T) {
	bbox := BBox{North: 41.80, South: 41.65, East: 44.90, West: 44.70}

	inside := &POI{OSMID: "node/1", Name: "Sulphur Baths", Category: "attraction", Lat: 41.6903, Lon: 44.8100}
	if err := ValidatePOIWithin(inside, bbox); err != nil {
		t.Errorf("ValidatePOIWithin() error = %v, want nil", err)
	}

	// Within padding but outside the strict box.
	padded := &POI{OSMID: "node/2", Name: "Turtle Lake", Category: "viewpoint", Lat: 41.89, Lon: 44.75}
	if err := ValidatePOIWithin(padded, bbox); err != nil {
		t.Errorf("ValidatePOIWithin() padded point error = %v, want nil", err)
	}

	far := &POI{OSMID: "node/3", Name: "Somewhere Else", Category: "attraction", Lat: 48.8, Lon: 2.3}
	err := ValidatePOIWithin(far, bbox)
	if !errors.Is(err, ErrOutsideBBox) {
		t.Errorf("ValidatePOIWithin() error = %v, want %v", err, ErrOutsideBBox)
	}
}

func TestValidateBBox(t *testing.T) {
	tests := []struct {
		name    string
		bbox    BBox
		wantErr bool
	}{
		{
			name:    "valid box",
			bbox:    BBox{North: 41.8, South: 41.65, East: 44.9, West: 44.7},
			wantErr: false,
		},
		{
			name:    "inverted latitudes",
			bbox:    BBox{North: 41.0, South: 42.0, East: 44.9, West: 44.7},
			wantErr: true,
		},
		{
			name:    "zero extent",
			bbox:    BBox{North: 41.8, South: 41.8, East: 44.9, West: 44.7},
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			bbox:    BBox{North: 41.8, South: 41.65, East: 181, West: 44.7},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBBox(tt.bbox)
			if tt.wantErr && err == nil {
				t.Error("ValidateBBox() error = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateBBox() error = %v, want nil", err)
			}
			if err != nil && !errors.Is(err, ErrInvalidBBox) {
				t.Errorf("ValidateBBox() error = %v, want %v", err, ErrInvalidBBox)
			}
		})
	}
}

func TestIsSuspiciousName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"regular name", "Bridge of Peace", false},
		{"digits only", "4234", true},
		{"uppercase code", "ATM", true},
		{"two letter code", "kb", true},
		{"contains test", "Testing Ground", true},
		{"contains unknown", "Unknown place", true},
		{"mixed case survives", "St. George Church", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuspiciousName(tt.in); got != tt.want {
				t.Errorf("IsSuspiciousName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"georgian", "თბილისი", "georgian"},
		{"cyrillic", "Москва", "cyrillic"},
		{"arabic", "مطعم", "arabic"},
		{"latin falls through", "Tbilisi", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectScript(tt.in); got != tt.want {
				t.Errorf("DetectScript(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
