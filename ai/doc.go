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


// Package ai provides abstractions for the LLM services the enrichment
// stages depend on.
//
// The enrich stage and the destination enricher talk only to the
// interfaces defined here, so the production backend can be swapped and
// tests can run without a model endpoint.
//
//   - POIEnricher: travel metadata for a single POI
//   - DestinationEnricher: the city-level profile
//   - Provider: aggregates both and owns their lifecycle
//
// # Implementation Packages
//
//   - ai/openai: production implementation against any OpenAI-compatible
//     endpoint (Ollama, LocalAI, vLLM, the hosted API)
//   - ai/mock: test doubles with behavior injection
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEnricher) return
// INTERFACE types to keep callers decoupled from the backend. Mock
// constructors return CONCRETE types so tests can inject behavior and
// assert call counts:
//
//	provider, err := openai.NewProvider(config) // returns ai.Provider
//
//	mockProv := mock.NewProvider()              // *mock.Provider
//	mockProv.Enricher.EnrichPOIFunc = ...       // needs concrete type
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	enrichment, err := provider.POIEnricher().EnrichPOI(ctx, poi)
package ai
