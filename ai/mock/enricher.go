package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/poiesic/poirit/core"
)

// MockEnricher is a test double for ai.POIEnricher.
// It allows custom behavior injection via function fields.
// Safe for concurrent use; the enrichment stage calls it from
// multiple workers.
type MockEnricher struct {
	// EnrichPOIFunc is called by EnrichPOI if set.
	// If nil, a deterministic enrichment is derived from the POI.
	EnrichPOIFunc func(ctx context.Context, poi *core.POI) (*core.Enrichment, error)

	mu        sync.Mutex
	callCount int
}

// NewMockEnricher creates a mock POI enricher with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockEnricher().
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{}
}

// EnrichPOI returns a deterministic enrichment derived from the POI.
// Default behavior: a templated description, sixty minutes, mid-range
// pricing, and neutral persona scores.
func (m *MockEnricher) EnrichPOI(ctx context.Context, poi *core.POI) (*core.Enrichment, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.EnrichPOIFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, poi)
	}

	category := poi.Category
	if category == "" {
		category = "place"
	}

	return &core.Enrichment{
		Description:    fmt.Sprintf("%s is a %s worth a visit.", poi.Name, category),
		DurationMin:    60,
		BestTime:       core.BestTimeAny,
		BestTimeReason: "Open throughout the day",
		PriceLevel:     core.PriceMidRange,
		PersonaScores:  core.NormalizePersonaScores(nil),
		Tips:           []string{"Check opening hours before visiting"},
		WhatToExpect:   fmt.Sprintf("An interesting %s experience", category),
		IsPopular:      poi.Priority >= 70 || poi.Tags["wikipedia"] != "",
		Source:         "mock",
		EnrichedAt:     time.Now().UTC(),
	}, nil
}

// CallCount returns the number of times EnrichPOI was called.
func (m *MockEnricher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEnricher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EnrichPOIFunc = nil
}
