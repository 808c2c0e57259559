package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/poirit/core"
)

// MockDestinationEnricher is a test double for ai.DestinationEnricher.
// It allows custom behavior injection via function fields.
type MockDestinationEnricher struct {
	// EnrichDestinationFunc is called by EnrichDestination if set.
	// If nil, a canned profile is derived from the city.
	EnrichDestinationFunc func(ctx context.Context, city core.City) (*core.Destination, error)

	callCount int
}

// NewMockDestinationEnricher creates a mock destination enricher with
// default behavior.
// Note: Returns concrete type to allow test assertions via GetMockDestination().
func NewMockDestinationEnricher() *MockDestinationEnricher {
	return &MockDestinationEnricher{}
}

// EnrichDestination returns a canned destination profile for the city.
// Identity and coordinates come from the city record, everything else
// is fixed sample content.
func (m *MockDestinationEnricher) EnrichDestination(ctx context.Context, city core.City) (*core.Destination, error) {
	m.callCount++

	if m.EnrichDestinationFunc != nil {
		return m.EnrichDestinationFunc(ctx, city)
	}

	lat, lon := city.BBox.Center()
	return &core.Destination{
		Slug:       city.Slug,
		Name:       city.Name,
		Country:    city.Country,
		Lat:        lat,
		Lon:        lon,
		Summary:    fmt.Sprintf("%s is a vibrant destination known for its rich history and culture.", city.Name),
		WhyGo:      []string{"Ancient Architecture", "Delicious Cuisine", "Scenic Views"},
		Tags:       []string{"heritage", "culture", "food"},
		BestMonths: []int{4, 5, 9, 10},
		MonthlyInsights: map[int]core.MonthlyInsight{
			1: {Verdict: "Winter chill", AvgTempC: 5, CrowdLevel: "low"},
			7: {Verdict: "Hot summer", AvgTempC: 30, CrowdLevel: "high"},
		},
		PersonaFit: core.NormalizePersonaScores(map[string]int{
			core.PersonaCulturalExplorer:   90,
			core.PersonaCulinaryEnthusiast: 85,
		}),
		Budget: core.Budget{
			Level:     "mid-range",
			DailyCost: map[string]int{"backpacker": 40, "mid_range": 90, "luxury": 200},
		},
		Safety:       core.Safety{Score: 0.9, Notes: "Very safe for tourists."},
		Connectivity: core.Connectivity{WiFi: "Excellent", Mobile: "4G/5G available"},
		Source:       "mock",
		EnrichedAt:   time.Now().UTC(),
	}, nil
}

// CallCount returns the number of times EnrichDestination was called.
func (m *MockDestinationEnricher) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockDestinationEnricher) Reset() {
	m.callCount = 0
	m.EnrichDestinationFunc = nil
}
