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


package openai

import (
	"log/slog"

	"github.com/poiesic/poirit/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages POI and destination enricher instances.
type Provider struct {
	config      *ai.Config
	enricher    *Enricher
	destination *DestinationEnricher
	logger      *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create POI enricher (using internal constructor for concrete type)
	enricher, err := newEnricher(config)
	if err != nil {
		return nil, err
	}

	// Create destination enricher (using internal constructor for concrete type)
	destination, err := newDestinationEnricher(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:      config,
		enricher:    enricher,
		destination: destination,
		logger:      slog.Default().With("component", "openai-provider"),
	}, nil
}

// POIEnricher returns the per-POI enrichment service.
func (p *Provider) POIEnricher() ai.POIEnricher {
	return p.enricher
}

// DestinationEnricher returns the city-level enrichment service.
func (p *Provider) DestinationEnricher() ai.DestinationEnricher {
	return p.destination
}

// Model reports the model name requests are issued against.
func (p *Provider) Model() string {
	return p.config.Model
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
