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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/poirit/ai"
	"github.com/poiesic/poirit/core"
)

// Visit durations the enricher will accept, in minutes.
const (
	minDuration     = 15
	maxDuration     = 480
	defaultDuration = 60
)

// Enricher implements ai.POIEnricher using OpenAI-compatible chat APIs.
type Enricher struct {
	client      llms.Model
	model       string
	temperature float64
	maxAttempts int
	logger      *slog.Logger
}

// poiPayload matches the JSON document the model is asked for.
// PriceLevel is a pointer so a missing value can default to mid-range
// without swallowing an explicit 0 (free).
type poiPayload struct {
	Description    string         `json:"description"`
	DurationMin    int            `json:"duration_min"`
	BestTime       string         `json:"best_time"`
	BestTimeReason string         `json:"best_time_reason"`
	PriceLevel     *int           `json:"price_level"`
	PersonaScores  map[string]int `json:"persona_scores"`
	Tips           []string       `json:"tips"`
	WhatToExpect   string         `json:"what_to_expect"`
}

// newEnricher is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEnricher(config *ai.Config) (*Enricher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that
	// don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Enricher{
		client:      client,
		model:       config.Model,
		temperature: config.Temperature,
		maxAttempts: config.MaxAttempts,
		logger:      slog.Default().With("component", "openai-enricher"),
	}, nil
}

// NewEnricher creates a POI enricher using the provided configuration.
//
// Returns ai.POIEnricher interface to enforce abstraction.
func NewEnricher(config *ai.Config) (ai.POIEnricher, error) {
	return newEnricher(config)
}

// EnrichPOI asks the model for travel metadata and normalizes the
// response: durations and price levels clamp to their ranges, persona
// scores cover all six personas, and popularity is computed from the
// POI rather than asked.
func (e *Enricher) EnrichPOI(ctx context.Context, poi *core.POI) (*core.Enrichment, error) {
	var payload poiPayload
	err := completeJSON(ctx, e.client,
		buildPOISystemPrompt(), buildPOIUserPrompt(poi),
		e.temperature, e.maxAttempts, e.logger, &payload)
	if err != nil {
		return nil, err
	}
	return e.toEnrichment(poi, &payload), nil
}

func (e *Enricher) toEnrichment(poi *core.POI, payload *poiPayload) *core.Enrichment {
	enr := &core.Enrichment{
		Description:    sanitizeSentence(payload.Description),
		DurationMin:    clampDuration(payload.DurationMin),
		BestTime:       normalizeBestTime(payload.BestTime),
		BestTimeReason: strings.TrimSpace(payload.BestTimeReason),
		PriceLevel:     core.PriceMidRange,
		PersonaScores:  core.NormalizePersonaScores(payload.PersonaScores),
		Tips:           cleanStrings(payload.Tips),
		WhatToExpect:   strings.TrimSpace(payload.WhatToExpect),
		IsPopular:      poi.Priority >= 70 || poi.Tags["wikipedia"] != "",
		Source:         e.model,
		EnrichedAt:     time.Now().UTC(),
	}
	if payload.PriceLevel != nil {
		enr.PriceLevel = clampPrice(*payload.PriceLevel)
	}
	return enr
}

// completeJSON asks the model for a JSON document and decodes it into
// out. Malformed responses are sanitized and re-requested up to
// maxAttempts times; transport errors fail immediately.
func completeJSON(ctx context.Context, client llms.Model, system, user string,
	temperature float64, maxAttempts int, logger *slog.Logger, out any) error {

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(system),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(user),
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err := client.GenerateContent(ctx, content,
			llms.WithTemperature(temperature), llms.WithJSONMode())
		if err != nil {
			return err
		}

		if len(response.Choices) < 1 {
			lastErr = ErrEmptyResponse
			logger.Warn("model returned no choices", "attempt", attempt+1)
			continue
		}

		text := sanitizeJSON(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(text), out); err != nil {
			lastErr = err
			logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", text,
				"err", err)
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %w", ErrUnparsableResponse, lastErr)
}

func clampDuration(minutes int) int {
	if minutes == 0 {
		return defaultDuration
	}
	if minutes < minDuration {
		return minDuration
	}
	if minutes > maxDuration {
		return maxDuration
	}
	return minutes
}

func clampPrice(level int) int {
	if level < core.PriceFree {
		return core.PriceFree
	}
	if level > core.PriceExpensive {
		return core.PriceExpensive
	}
	return level
}

// normalizeBestTime maps model output onto the visit-time vocabulary.
// Anything unrecognized becomes "any".
func normalizeBestTime(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case core.BestTimeMorning:
		return core.BestTimeMorning
	case core.BestTimeAfternoon:
		return core.BestTimeAfternoon
	case core.BestTimeEvening:
		return core.BestTimeEvening
	case core.BestTimeNight:
		return core.BestTimeNight
	default:
		return core.BestTimeAny
	}
}

// sanitizeSentence trims whitespace and drops stray double quotes the
// model sometimes wraps descriptions in.
func sanitizeSentence(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// cleanStrings trims each entry and drops empties.
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
