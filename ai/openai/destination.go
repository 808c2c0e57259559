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
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/poirit/ai"
	"github.com/poiesic/poirit/core"
)

// DestinationEnricher implements ai.DestinationEnricher using
// OpenAI-compatible chat APIs.
type DestinationEnricher struct {
	client      llms.Model
	model       string
	temperature float64
	maxAttempts int
	logger      *slog.Logger
}

// destinationPayload matches the JSON document the model is asked for.
// Monthly insight keys arrive as strings ("1".."12") because JSON
// object keys are always strings.
type destinationPayload struct {
	Summary         string                    `json:"summary"`
	WhyGo           []string                  `json:"why_go"`
	Tags            []string                  `json:"tags"`
	BestMonths      []int                     `json:"best_months"`
	MonthlyInsights map[string]monthlyInsight `json:"monthly_insights"`
	PersonaFit      map[string]int            `json:"persona_fit"`
	Budget          budgetPayload             `json:"budget"`
	Safety          safetyPayload             `json:"safety"`
	Connectivity    connectivityPayload       `json:"connectivity"`
}

type monthlyInsight struct {
	Verdict    string `json:"verdict"`
	AvgTempC   int    `json:"avg_temp_c"`
	CrowdLevel string `json:"crowd_level"`
}

type budgetPayload struct {
	Level     string         `json:"level"`
	DailyCost map[string]int `json:"daily_cost"`
}

type safetyPayload struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}

type connectivityPayload struct {
	WiFi   string `json:"wifi"`
	Mobile string `json:"mobile"`
}

// newDestinationEnricher is an internal constructor that returns the
// concrete type. Used by Provider to manage the instance.
func newDestinationEnricher(config *ai.Config) (*DestinationEnricher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &DestinationEnricher{
		client:      client,
		model:       config.Model,
		temperature: config.Temperature,
		maxAttempts: config.MaxAttempts,
		logger:      slog.Default().With("component", "openai-destination"),
	}, nil
}

// NewDestinationEnricher creates a destination enricher using the
// provided configuration.
//
// Returns ai.DestinationEnricher interface to enforce abstraction.
func NewDestinationEnricher(config *ai.Config) (ai.DestinationEnricher, error) {
	return newDestinationEnricher(config)
}

// EnrichDestination asks the model for a city-level travel profile.
// Identity comes from the city record: slug, name, country, and
// coordinates at the bounding-box center. External facts (population,
// currency, images) are layered on by the caller afterwards.
func (e *DestinationEnricher) EnrichDestination(ctx context.Context, city core.City) (*core.Destination, error) {
	var payload destinationPayload
	err := completeJSON(ctx, e.client,
		buildDestinationSystemPrompt(), buildDestinationUserPrompt(city),
		e.temperature, e.maxAttempts, e.logger, &payload)
	if err != nil {
		return nil, err
	}
	return e.toDestination(city, &payload), nil
}

func (e *DestinationEnricher) toDestination(city core.City, payload *destinationPayload) *core.Destination {
	lat, lon := city.BBox.Center()
	return &core.Destination{
		Slug:            city.Slug,
		Name:            city.Name,
		Country:         city.Country,
		Lat:             lat,
		Lon:             lon,
		Summary:         sanitizeSentence(payload.Summary),
		WhyGo:           cleanStrings(payload.WhyGo),
		Tags:            lowerStrings(cleanStrings(payload.Tags)),
		BestMonths:      filterMonths(payload.BestMonths),
		MonthlyInsights: parseMonthlyInsights(payload.MonthlyInsights),
		PersonaFit:      core.NormalizePersonaScores(payload.PersonaFit),
		Budget: core.Budget{
			Level:     normalizeBudgetLevel(payload.Budget.Level),
			DailyCost: payload.Budget.DailyCost,
		},
		Safety: core.Safety{
			Score: clampUnit(payload.Safety.Score),
			Notes: strings.TrimSpace(payload.Safety.Notes),
		},
		Connectivity: core.Connectivity{
			WiFi:   strings.TrimSpace(payload.Connectivity.WiFi),
			Mobile: strings.TrimSpace(payload.Connectivity.Mobile),
		},
		Source:     e.model,
		EnrichedAt: time.Now().UTC(),
	}
}

// filterMonths keeps values in 1..12, dropping duplicates, and returns
// them sorted.
func filterMonths(months []int) []int {
	seen := make(map[int]bool, len(months))
	out := make([]int, 0, len(months))
	for _, m := range months {
		if m < 1 || m > 12 || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Ints(out)
	return out
}

// parseMonthlyInsights converts string month keys to ints, skipping
// keys that are not valid months.
func parseMonthlyInsights(in map[string]monthlyInsight) map[int]core.MonthlyInsight {
	if len(in) == 0 {
		return nil
	}
	out := make(map[int]core.MonthlyInsight, len(in))
	for key, insight := range in {
		month, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || month < 1 || month > 12 {
			continue
		}
		out[month] = core.MonthlyInsight{
			Verdict:    strings.TrimSpace(insight.Verdict),
			AvgTempC:   insight.AvgTempC,
			CrowdLevel: normalizeCrowdLevel(insight.CrowdLevel),
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeCrowdLevel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "medium", "high":
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return "medium"
	}
}

func normalizeBudgetLevel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "budget", "mid-range", "luxury":
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return "mid-range"
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lowerStrings(in []string) []string {
	for i, s := range in {
		in[i] = strings.ToLower(s)
	}
	return in
}
