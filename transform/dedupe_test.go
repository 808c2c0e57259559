package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/poirit/core"
)

func TestDedupe_ByOSMID(t *testing.T) {
	pois := []*core.POI{
		{OSMID: "node/1", Name: "First", Category: "museum"},
		{OSMID: "node/1", Name: "Second", Category: "museum"},
	}

	out := Dedupe(pois)
	require.Len(t, out, 1)
	assert.Equal(t, "First", out[0].Name)
}

func TestDedupe_ByNameCategory_KeepsMoreTags(t *testing.T) {
	sparse := &core.POI{OSMID: "node/1", Name: "Sulphur Baths", Category: "attraction"}
	rich := &core.POI{
		OSMID: "way/2", Name: "sulphur baths", Category: "attraction",
		Tags: map[string]string{"website": "https://baths.ge", "opening_hours": "24/7"},
	}
	other := &core.POI{OSMID: "node/3", Name: "Meidan Bazaar", Category: "marketplace"}

	out := Dedupe([]*core.POI{sparse, rich, other})
	require.Len(t, out, 2)
	// rich record wins but keeps the first occurrence's slot
	assert.Equal(t, "way/2", out[0].OSMID)
	assert.Equal(t, "node/3", out[1].OSMID)
}

func TestDedupe_FirstWinsOnEqualTags(t *testing.T) {
	a := &core.POI{OSMID: "node/1", Name: "Old Bridge", Category: "attraction"}
	b := &core.POI{OSMID: "node/2", Name: "Old Bridge", Category: "attraction"}

	out := Dedupe([]*core.POI{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "node/1", out[0].OSMID)
}

func TestDedupe_DifferentCategoryKept(t *testing.T) {
	pois := []*core.POI{
		{OSMID: "node/1", Name: "Metekhi", Category: "church"},
		{OSMID: "node/2", Name: "Metekhi", Category: "viewpoint"},
	}

	out := Dedupe(pois)
	assert.Len(t, out, 2)
}

func TestDedupe_PreservesOrder(t *testing.T) {
	pois := []*core.POI{
		{OSMID: "node/3", Name: "C", Category: "cafe"},
		{OSMID: "node/1", Name: "A", Category: "cafe"},
		{OSMID: "node/3", Name: "C dup", Category: "cafe"},
		{OSMID: "node/2", Name: "B", Category: "cafe"},
	}

	out := Dedupe(pois)
	require.Len(t, out, 3)
	assert.Equal(t, "node/3", out[0].OSMID)
	assert.Equal(t, "node/1", out[1].OSMID)
	assert.Equal(t, "node/2", out[2].OSMID)
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}
