package enrich

import (
	"sort"

	"github.com/poiesic/poirit/core"
)

// priorityByCategory holds the base score for each tourism category.
// Categories absent from the table score zero and are only worth
// enriching when tag bonuses lift them over the minimum.
var priorityByCategory = map[string]int{
	"museum":     50,
	"attraction": 50,
	"gallery":    50,
	"viewpoint":  50,

	"historic": 40,
	"castle":   40,
	"ruins":    40,
	"monument": 40,

	"temple":           35,
	"church":           35,
	"place_of_worship": 35,

	"park":   30,
	"garden": 30,

	"restaurant": 10,
	"cafe":       10,
	"bar":        10,
}

// Score rates how enrichment-worthy a POI is on a 0..100 scale. The
// base score comes from the category; richly tagged places get bonuses
// since tags signal both notability and better prompt material.
func Score(poi *core.POI) int {
	score := priorityByCategory[poi.Category]

	if poi.Tags["wikipedia"] != "" {
		score += 20
	}
	if poi.Tags["website"] != "" {
		score += 10
	}
	if poi.Tags["opening_hours"] != "" {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Prioritize assigns a priority score to every POI and returns the
// slice sorted by descending score. Ties keep their silver-layer order.
func Prioritize(pois []core.POI) []core.POI {
	for i := range pois {
		pois[i].Priority = Score(&pois[i])
	}
	sort.SliceStable(pois, func(i, j int) bool {
		return pois[i].Priority > pois[j].Priority
	})
	return pois
}
