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


package mock

import "github.com/poiesic/poirit/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock enricher instances.
type MockProvider struct {
	enricher    *MockEnricher
	destination *MockDestinationEnricher
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockEnricher()/GetMockDestination() to access concrete types for
// test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		enricher:    NewMockEnricher(),
		destination: NewMockDestinationEnricher(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(enricher *MockEnricher, destination *MockDestinationEnricher) ai.Provider {
	return &MockProvider{
		enricher:    enricher,
		destination: destination,
	}
}

// POIEnricher returns the mock POI enricher.
func (p *MockProvider) POIEnricher() ai.POIEnricher {
	return p.enricher
}

// DestinationEnricher returns the mock destination enricher.
func (p *MockProvider) DestinationEnricher() ai.DestinationEnricher {
	return p.destination
}

// Model names the pretend model behind the mocks.
func (p *MockProvider) Model() string {
	return "mock"
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEnricher returns the underlying mock enricher for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEnricher() *MockEnricher {
	return p.enricher
}

// GetMockDestination returns the underlying mock destination enricher for
// test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockDestination() *MockDestinationEnricher {
	return p.destination
}
