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


package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/poirit/core"
)

// FallbackSource marks enrichments produced without the model.
const FallbackSource = "fallback"

// fallbackPrices maps categories to a price level when the model is
// unavailable. Unknown categories default to mid-range.
var fallbackPrices = map[string]int{
	"museum":     core.PriceBudget,
	"gallery":    core.PriceBudget,
	"attraction": core.PriceMidRange,
	"restaurant": core.PriceMidRange,
	"cafe":       core.PriceBudget,
	"bar":        core.PriceMidRange,
	"hotel":      core.PriceExpensive,
	"viewpoint":  core.PriceFree,
	"park":       core.PriceFree,
	"historic":   core.PriceFree,
	"monument":   core.PriceFree,
	"memorial":   core.PriceFree,
}

// fallbackDurations maps categories to a typical visit length in
// minutes. Unknown categories default to an hour.
var fallbackDurations = map[string]int{
	"museum":           90,
	"gallery":          60,
	"attraction":       60,
	"viewpoint":        30,
	"castle":           90,
	"ruins":            60,
	"monument":         30,
	"memorial":         30,
	"historic":         45,
	"park":             60,
	"garden":           45,
	"restaurant":       90,
	"cafe":             45,
	"bar":              60,
	"church":           30,
	"monastery":        45,
	"temple":           45,
	"place_of_worship": 30,
}

// Fallback builds a deterministic enrichment from the POI itself, used
// whenever the model fails. The output satisfies the same contract as a
// model response: all six persona scores, bounded duration and price.
func Fallback(poi *core.POI) *core.Enrichment {
	category := poi.Category
	if category == "" {
		category = "place"
	}
	city := poi.City
	if city == "" {
		city = "the city"
	}

	price, ok := fallbackPrices[poi.Category]
	if !ok {
		price = core.PriceMidRange
	}
	duration, ok := fallbackDurations[poi.Category]
	if !ok {
		duration = 60
	}

	return &core.Enrichment{
		Description:   fmt.Sprintf("A wonderful %s in %s.", category, city),
		DurationMin:   duration,
		BestTime:      core.BestTimeAny,
		PriceLevel:    price,
		PersonaScores: fallbackPersonaScores(poi),
		Tips:          []string{"Check opening hours before visiting"},
		WhatToExpect:  fmt.Sprintf("An interesting %s experience", category),
		IsPopular:     poi.Priority >= 70 || poi.Tags["wikipedia"] != "",
		Source:        FallbackSource,
		EnrichedAt:    time.Now().UTC(),
	}
}

// fallbackPersonaScores rates personas by keyword overlap with the
// POI's category and curated tag values. A matching persona scores 80,
// everyone else stays at the neutral default.
func fallbackPersonaScores(poi *core.POI) map[string]int {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(poi.Category))
	for _, v := range poi.Tags {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(v))
	}
	text := sb.String()

	scores := make(map[string]int)
	for persona, keywords := range core.PersonaKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) || categoryImplies(poi.Category, kw) {
				scores[persona] = 80
				break
			}
		}
	}
	return core.NormalizePersonaScores(scores)
}

// categoryImplies catches categories that are prefixes of a keyword,
// like "historic" against "historical".
func categoryImplies(category, keyword string) bool {
	return len(category) >= 4 && strings.HasPrefix(keyword, category)
}
