package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecToggleDoesNotAlias(t *testing.T) {
	base := Spec{Filters: map[string][]string{"color": {"blue"}}}

	added := base.Toggle("color", "red")
	removed := added.Toggle("color", "blue")
	cleared := removed.Toggle("color", "red")

	assert.Equal(t, []string{"blue"}, base.Filters["color"])
	assert.Equal(t, []string{"blue", "red"}, added.Filters["color"])
	assert.Equal(t, []string{"red"}, removed.Filters["color"])
	assert.NotContains(t, cleared.Filters, "color")
	assert.True(t, added.Selected("color", "red"))
	assert.False(t, base.Selected("color", "red"))
}

func TestSpecActiveFiltersAndClear(t *testing.T) {
	lo := 10.0
	spec := Spec{
		Query:   "focus",
		Sort:    "date",
		Filters: map[string][]string{"color": {"blue", "red"}, "status": {"open"}},
		Ranges:  map[string]Range{"words": {Min: &lo}, "pages": {}},
	}

	assert.Equal(t, 4, spec.ActiveFilters())

	cleared := spec.ClearFilters()
	assert.Equal(t, 0, cleared.ActiveFilters())
	assert.Equal(t, "focus", cleared.Query)
	assert.Equal(t, "date", cleared.Sort)
}

func TestSpecJSONRoundTripKeepsConstraints(t *testing.T) {
	lo, hi := 50.0, 80.0
	spec := Spec{
		Query:     "deadline",
		Filters:   map[string][]string{"emotion": {"anxious"}},
		Ranges:    map[string]Range{"words": {Min: &lo, Max: &hi}},
		Sort:      "date",
		Direction: Descending,
		Now:       refNow,
	}

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Now")

	var decoded Spec
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Now.IsZero())
	decoded.Now = spec.Now
	assert.Equal(t, spec, decoded)
}

func TestParseDirection(t *testing.T) {
	dir, ok := ParseDirection(" DESC ")
	assert.True(t, ok)
	assert.Equal(t, Descending, dir)

	_, ok = ParseDirection("up")
	assert.False(t, ok)

	assert.Equal(t, Ascending, Descending.Flip())
	assert.Equal(t, Descending, Ascending.Flip())
}
