// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.POIEnricher,
// ai.DestinationEnricher, and ai.Provider for use in unit tests. The mocks
// allow tests to run without a model server and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	enrichment, err := mockProvider.POIEnricher().EnrichPOI(ctx, poi)
//
//	// Custom behavior injection
//	mockEnricher := mock.NewMockEnricher()
//	mockEnricher.EnrichPOIFunc = func(ctx context.Context, poi *core.POI) (*core.Enrichment, error) {
//	    return nil, errors.New("model unavailable")
//	}
//
//	// Check call counts
//	count := mockEnricher.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEnricher: Derives a templated enrichment from the POI itself
//   - MockDestinationEnricher: Returns a canned city profile
//   - MockProvider: Aggregates mock enrichers under the model name "mock"
package mock
