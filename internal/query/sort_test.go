package query

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingDatesSortLastInBothDirections(t *testing.T) {
	engine := newItemEngine(t)
	items := []item{
		{id: 1},
		{id: 2, date: day(3)},
		{id: 3},
		{id: 4, date: day(-3)},
	}

	asc := engine.Run(items, Spec{Sort: "date", Direction: Ascending, Now: refNow})
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(asc.Records))

	desc := engine.Run(items, Spec{Sort: "date", Direction: Descending, Now: refNow})
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(desc.Records))
}

func TestTiesBreakByAscendingIDRegardlessOfInputOrder(t *testing.T) {
	engine := newItemEngine(t)
	forward := []item{
		{id: 7, title: "same"},
		{id: 3, title: "Same"},
		{id: 5, title: "SAME"},
		{id: 1, title: "apple"},
	}
	backward := []item{forward[3], forward[2], forward[1], forward[0]}

	for _, dir := range []Direction{Ascending, Descending} {
		a := engine.Run(forward, Spec{Sort: "title", Direction: dir, Now: refNow})
		b := engine.Run(backward, Spec{Sort: "title", Direction: dir, Now: refNow})
		assert.Equal(t, ids(a.Records), ids(b.Records))
	}

	asc := engine.Run(forward, Spec{Sort: "title", Now: refNow})
	assert.Equal(t, []int64{1, 3, 5, 7}, ids(asc.Records))

	desc := engine.Run(forward, Spec{Sort: "title", Direction: Descending, Now: refNow})
	assert.Equal(t, []int64{3, 5, 7, 1}, ids(desc.Records))
}

func TestSortIsIdempotentUnderReapplication(t *testing.T) {
	engine := newItemEngine(t)
	spec := Spec{Sort: "words", Now: refNow}

	once := engine.Run(sampleItems(), spec)
	twice := engine.Run(once.Records, spec)

	assert.Equal(t, ids(once.Records), ids(twice.Records))
}

func TestNumericSortUsesKeyDefaultDirection(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(sampleItems(), Spec{Sort: "words", Now: refNow})

	// words defaults to descending; the record without a count goes last.
	assert.Equal(t, []int64{3, 4, 2, 5, 1}, ids(result.Records))
}

func TestCompare(t *testing.T) {
	engine := newItemEngine(t)
	a := item{id: 1, title: "alpha", date: day(1)}
	b := item{id: 2, title: "Beta", date: day(1)}
	c := item{id: 3, title: "gamma"}

	assert.Equal(t, -1, engine.Compare(a, b, "title", Ascending))
	assert.Equal(t, 1, engine.Compare(a, b, "title", Descending))
	assert.Equal(t, -1, engine.Compare(a, b, "date", Descending))
	assert.Equal(t, -1, engine.Compare(b, c, "date", Ascending))
	assert.Equal(t, -1, engine.Compare(b, c, "date", Descending))
	assert.Equal(t, 1, engine.Compare(b, a, "unknown", Ascending))
	assert.Equal(t, 0, engine.Compare(a, a, "title", Ascending))
}

func TestRunTextSortMatchesCompare(t *testing.T) {
	engine := newItemEngine(t)
	items := []item{
		{id: 6, title: "Straße"},
		{id: 2, title: "  "},
		{id: 4, title: "STRASSE"},
		{id: 1, title: "apple"},
		{id: 5, title: "Ärger"},
		{id: 3},
	}

	for _, dir := range []Direction{Ascending, Descending} {
		want := slices.Clone(items)
		slices.SortStableFunc(want, func(a, b item) int {
			return engine.Compare(a, b, "title", dir)
		})
		got := engine.Run(items, Spec{Sort: "title", Direction: dir, Now: refNow})
		assert.Equal(t, ids(want), ids(got.Records), dir)
	}

	asc := engine.Run(items, Spec{Sort: "title", Direction: Ascending, Now: refNow})
	assert.Equal(t, []int64{2, 3}, ids(asc.Records)[4:])
}
