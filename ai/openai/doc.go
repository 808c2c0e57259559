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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.Provider interface using the langchaingo
// library to communicate with OpenAI or OpenAI-compatible services (such as
// Ollama, LocalAI, or vLLM). Responses are requested in JSON mode, sanitized
// for the usual local-model failure modes (markdown fences, trailing commas,
// prose around the document), and re-requested a bounded number of times
// before giving up.
//
// # Usage
//
//	config := ai.DefaultConfig()
//	// Or customize:
//	config := &ai.Config{
//	    Host:        "http://localhost:11434",  // /v1 added automatically
//	    Model:       "llama3.1:8b",
//	    MaxAttempts: 3,
//	}
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	// Use the services
//	enrichment, err := provider.POIEnricher().EnrichPOI(ctx, poi)
//	profile, err := provider.DestinationEnricher().EnrichDestination(ctx, city)
package openai
