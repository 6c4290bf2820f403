package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupClosedCategoryKeepsOptionOrder(t *testing.T) {
	engine := newItemEngine(t)
	result := engine.Run(sampleItems(), Spec{Sort: "title", Now: refNow})

	groups := engine.Group(result.Records, "status", refNow)

	require.Len(t, groups, 2)
	assert.Equal(t, "open", groups[0].Value)
	assert.Equal(t, []int64{5, 4, 2, 1}, ids(groups[0].Records))
	assert.Equal(t, "done", groups[1].Value)
	assert.Equal(t, []int64{3}, ids(groups[1].Records))
}

func TestGroupOpenCategory(t *testing.T) {
	engine := newItemEngine(t)
	result := engine.Run(sampleItems(), Spec{Sort: "date", Now: refNow})

	groups := engine.Group(result.Records, "tag", refNow)

	values := make([]string, 0, len(groups))
	for _, g := range groups {
		values = append(values, g.Value)
	}
	assert.Equal(t, []string{"family", "home", "review", "work", ""}, values)
	assert.Equal(t, []int64{3, 4}, ids(groups[3].Records))
	assert.Equal(t, []int64{1}, ids(groups[4].Records))
}

func TestGroupUnknownCategory(t *testing.T) {
	var got []Diagnostic
	engine := newItemEngine(t, WithDiagnostics(func(d Diagnostic) { got = append(got, d) }))

	assert.Nil(t, engine.Group(sampleItems(), "shape", refNow))
	assert.Equal(t, []Diagnostic{{Kind: UnknownCategory, Name: "shape"}}, got)
}

func TestOrderedValuesAppendsObservedValues(t *testing.T) {
	values := OrderedValues([]string{"high", "low"}, map[string]int{"low": 2, "urgent": 1, "blocked": 3, "high": 0})

	assert.Equal(t, []string{"high", "low", "blocked", "urgent"}, values)
	assert.Empty(t, OrderedValues(nil, nil))
}
