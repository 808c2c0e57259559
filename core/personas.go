package core

// Travel persona identifiers. Every enrichment carries a score for
// each of these.
const (
	PersonaCulturalExplorer   = "cultural_explorer"
	PersonaAdventureSeeker    = "adventure_seeker"
	PersonaBeachLover         = "beach_lover"
	PersonaLuxuryTraveler     = "luxury_traveler"
	PersonaCulinaryEnthusiast = "culinary_enthusiast"
	PersonaWellnessRetreater  = "wellness_retreater"
)

// DefaultPersonaScore is used when the model omits a persona or the
// response cannot be parsed.
const DefaultPersonaScore = 50

var personaOrder = []string{
	PersonaCulturalExplorer,
	PersonaAdventureSeeker,
	PersonaBeachLover,
	PersonaLuxuryTraveler,
	PersonaCulinaryEnthusiast,
	PersonaWellnessRetreater,
}

// PersonaKeywords describe each persona's interests; prompts and
// fallback scoring both draw on them.
var PersonaKeywords = map[string][]string{
	PersonaCulturalExplorer:   {"temple", "museum", "historical", "cultural"},
	PersonaAdventureSeeker:    {"hiking", "adventure", "mountain", "sports"},
	PersonaBeachLover:         {"beach", "ocean", "island", "coastal"},
	PersonaLuxuryTraveler:     {"luxury", "spa", "resort", "fine dining"},
	PersonaCulinaryEnthusiast: {"food", "restaurant", "market", "cuisine"},
	PersonaWellnessRetreater:  {"meditation", "yoga", "wellness", "peaceful"},
}

// Personas returns the persona identifiers in stable order.
func Personas() []string {
	out := make([]string, len(personaOrder))
	copy(out, personaOrder)
	return out
}

// ClampScore bounds a persona score to [0, 100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NormalizePersonaScores returns a score map covering every persona:
// present values are clamped, missing ones filled with
// DefaultPersonaScore. Unknown keys in the input are dropped.
func NormalizePersonaScores(in map[string]int) map[string]int {
	out := make(map[string]int, len(personaOrder))
	for _, p := range personaOrder {
		score, ok := in[p]
		if !ok {
			score = DefaultPersonaScore
		}
		out[p] = ClampScore(score)
	}
	return out
}
