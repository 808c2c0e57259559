package openai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/poirit/core"
)

const poiResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "description": {"type": "string"},
    "duration_min": {"type": "integer", "minimum": 15, "maximum": 480},
    "best_time": {"type": "string", "enum": ["morning", "afternoon", "evening", "night", "any"]},
    "best_time_reason": {"type": "string"},
    "price_level": {"type": "integer", "minimum": 0, "maximum": 3},
    "persona_scores": {
      "type": "object",
      "properties": {
        "cultural_explorer": {"type": "integer", "minimum": 0, "maximum": 100},
        "adventure_seeker": {"type": "integer", "minimum": 0, "maximum": 100},
        "beach_lover": {"type": "integer", "minimum": 0, "maximum": 100},
        "luxury_traveler": {"type": "integer", "minimum": 0, "maximum": 100},
        "culinary_enthusiast": {"type": "integer", "minimum": 0, "maximum": 100},
        "wellness_retreater": {"type": "integer", "minimum": 0, "maximum": 100}
      },
      "required": ["cultural_explorer", "adventure_seeker", "beach_lover", "luxury_traveler", "culinary_enthusiast", "wellness_retreater"],
      "additionalProperties": false
    },
    "tips": {"type": "array", "items": {"type": "string"}},
    "what_to_expect": {"type": "string"}
  },
  "required": ["description", "duration_min", "best_time", "price_level", "persona_scores"],
  "additionalProperties": false
}`

const poiPromptTemplate = `You write travel content for a trip-planning product. Generate enrichment for one point of interest and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "description": 2-3 engaging sentences for travelers; highlight what makes this place special.
- "duration_min": realistic visit duration in minutes.
- "best_time": best time of day to visit; "best_time_reason" explains why in one sentence.
- "price_level": 0=free, 1=budget, 2=mid-range, 3=expensive.
- "persona_scores": rate 0-100 how well this specific place suits each traveler persona:
  cultural_explorer (history, art, local life), adventure_seeker (active, nature, thrill),
  beach_lover (sun, sand, sea), luxury_traveler (comfort, high-end, pampering),
  culinary_enthusiast (food, drink, markets), wellness_retreater (peace, yoga, spa).
  Score the attraction itself, not the city around it.
- "tips": 2-3 practical visitor tips.
- "what_to_expect": one sentence about the visitor experience.
- Be specific and helpful; do not invent facts the input does not support.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const destinationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "why_go": {"type": "array", "items": {"type": "string"}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "best_months": {"type": "array", "items": {"type": "integer", "minimum": 1, "maximum": 12}},
    "monthly_insights": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "verdict": {"type": "string"},
          "avg_temp_c": {"type": "integer"},
          "crowd_level": {"type": "string", "enum": ["low", "medium", "high"]}
        },
        "required": ["verdict", "avg_temp_c", "crowd_level"]
      }
    },
    "persona_fit": {
      "type": "object",
      "properties": {
        "cultural_explorer": {"type": "integer", "minimum": 0, "maximum": 100},
        "adventure_seeker": {"type": "integer", "minimum": 0, "maximum": 100},
        "beach_lover": {"type": "integer", "minimum": 0, "maximum": 100},
        "luxury_traveler": {"type": "integer", "minimum": 0, "maximum": 100},
        "culinary_enthusiast": {"type": "integer", "minimum": 0, "maximum": 100},
        "wellness_retreater": {"type": "integer", "minimum": 0, "maximum": 100}
      },
      "required": ["cultural_explorer", "adventure_seeker", "beach_lover", "luxury_traveler", "culinary_enthusiast", "wellness_retreater"]
    },
    "budget": {
      "type": "object",
      "properties": {
        "level": {"type": "string", "enum": ["budget", "mid-range", "luxury"]},
        "daily_cost": {"type": "object", "additionalProperties": {"type": "integer"}}
      },
      "required": ["level"]
    },
    "safety": {
      "type": "object",
      "properties": {
        "score": {"type": "number", "minimum": 0, "maximum": 1},
        "notes": {"type": "string"}
      },
      "required": ["score"]
    },
    "connectivity": {
      "type": "object",
      "properties": {
        "wifi": {"type": "string"},
        "mobile": {"type": "string"}
      }
    }
  },
  "required": ["summary", "why_go", "best_months", "monthly_insights", "persona_fit", "budget", "safety"],
  "additionalProperties": false
}`

const destinationPromptTemplate = `You are a travel expert. Generate a destination profile for a city and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "summary": 2-3 catchy sentences capturing what the city is known for.
- "why_go": 3-5 short reasons to visit.
- "tags": 3-6 single-word themes (e.g. "heritage", "food", "nightlife").
- "best_months": the months with the best combination of weather and crowds.
- "monthly_insights": one entry per month, keyed "1" through "12". "verdict" is a short phrase,
  "avg_temp_c" the typical daytime temperature, "crowd_level" one of low, medium, high.
- "persona_fit": rate 0-100 how well the city as a whole suits each traveler persona:
  cultural_explorer, adventure_seeker, beach_lover, luxury_traveler, culinary_enthusiast, wellness_retreater.
- "budget": "daily_cost" maps the tiers "backpacker", "mid_range", and "luxury" to USD per day.
- "safety": score from 0 (dangerous) to 1 (very safe) with a one-sentence note.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

// buildPOISystemPrompt returns the system prompt for POI enrichment.
func buildPOISystemPrompt() string {
	return fmt.Sprintf(poiPromptTemplate, poiResponseSchema)
}

// buildPOIUserPrompt renders the POI facts the model should enrich.
func buildPOIUserPrompt(poi *core.POI) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", poi.Name)
	fmt.Fprintf(&sb, "Type: %s\n", poi.Category)
	if poi.City != "" {
		fmt.Fprintf(&sb, "City: %s\n", poi.City)
	}
	fmt.Fprintf(&sb, "Tags: %s", renderTags(poi.Tags))
	return sb.String()
}

// buildDestinationSystemPrompt returns the system prompt for the
// destination profile.
func buildDestinationSystemPrompt() string {
	return fmt.Sprintf(destinationPromptTemplate, destinationResponseSchema)
}

// buildDestinationUserPrompt renders the city the model should profile.
func buildDestinationUserPrompt(city core.City) string {
	return fmt.Sprintf("City: %s\nCountry: %s", city.Name, city.Country)
}

// renderTags flattens a tag map into a stable "k=v, k=v" line.
func renderTags(tags map[string]string) string {
	if len(tags) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}
	return strings.Join(parts, ", ")
}
