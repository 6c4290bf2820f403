package query

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id       int64
	title    string
	body     string
	tags     []string
	color    string
	status   string
	date     *time.Time
	words    int
	hasWords bool
}

var refNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	t := refNow.AddDate(0, 0, offset)
	return &t
}

func itemSchema() Schema[item] {
	return Schema[item]{
		ID:   func(i item) int64 { return i.id },
		Text: []func(item) string{func(i item) string { return i.title }, func(i item) string { return i.body }},
		Tags: []func(item) []string{func(i item) []string { return i.tags }},
		Categories: []Category[item]{
			{
				Name: "color",
				Values: func(i item, _ time.Time) []string {
					if i.color == "" {
						return nil
					}
					return []string{i.color}
				},
			},
			{
				Name:    "status",
				Options: []string{"open", "done"},
				Values:  func(i item, _ time.Time) []string { return []string{i.status} },
			},
			{
				Name:    "when",
				Options: DueBuckets,
				Values: func(i item, now time.Time) []string {
					return ClassifyDue(i.date, i.status == "done", now)
				},
			},
			{
				Name:   "tag",
				Values: func(i item, _ time.Time) []string { return i.tags },
			},
		},
		Ranges: []NumericField[item]{
			{Name: "words", Value: func(i item) (float64, bool) { return float64(i.words), i.hasWords }},
		},
		Dates: []DateField[item]{
			{Name: "when", Value: func(i item) *time.Time { return i.date }},
		},
		SortKeys: []SortKey[item]{
			{Name: "date", Kind: ByDate, Date: func(i item) *time.Time { return i.date }},
			{Name: "title", Kind: ByText, Text: func(i item) string { return i.title }},
			{
				Name:      "words",
				Kind:      ByNumber,
				Direction: Descending,
				Number:    func(i item) (float64, bool) { return float64(i.words), i.hasWords },
			},
		},
		DefaultSort: "date",
	}
}

func newItemEngine(t *testing.T, opts ...Option) *Engine[item] {
	t.Helper()
	engine, err := NewEngine(itemSchema(), opts...)
	require.NoError(t, err)
	return engine
}

func sampleItems() []item {
	return []item{
		{id: 4, title: "Focus block", body: "deep work", tags: []string{"work"}, color: "blue", status: "open", date: day(1), words: 60, hasWords: true},
		{id: 2, title: "Groceries", body: "milk and eggs", tags: []string{"home"}, color: "green", status: "open", date: day(-2), words: 40, hasWords: true},
		{id: 3, title: "Review", body: "quarterly focus review", tags: []string{"work", "review"}, color: "blue", status: "done", date: day(-1), words: 90, hasWords: true},
		{id: 1, title: "Someday", body: "", color: "", status: "open", words: 0, hasWords: false},
		{id: 5, title: "Call mom", body: "birthday", tags: []string{"family"}, color: "red", status: "open", date: day(0), words: 10, hasWords: true},
	}
}

func ids(items []item) []int64 {
	out := make([]int64, 0, len(items))
	for _, i := range items {
		out = append(out, i.id)
	}
	return out
}

func TestNewEngineRejectsIncompleteSchema(t *testing.T) {
	_, err := NewEngine(Schema[item]{})
	require.Error(t, err)

	schema := itemSchema()
	schema.SortKeys = append(schema.SortKeys, SortKey[item]{Name: "broken", Kind: ByDate})
	_, err = NewEngine(schema)
	require.Error(t, err)

	schema = itemSchema()
	schema.DefaultSort = "missing"
	_, err = NewEngine(schema)
	require.Error(t, err)

	schema = itemSchema()
	schema.Categories = append(schema.Categories, schema.Categories[0])
	_, err = NewEngine(schema)
	require.Error(t, err)
}

func TestRunFiltersAndSorts(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(sampleItems(), Spec{
		Filters: map[string][]string{"color": {"blue", "red"}},
		Sort:    "date",
		Now:     refNow,
	})

	assert.Equal(t, []int64{3, 5, 4}, ids(result.Records))
	assert.Equal(t, 5, result.Total)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	engine := newItemEngine(t)
	items := sampleItems()
	before := ids(items)

	result := engine.Run(items, Spec{Sort: "title", Now: refNow})
	require.Len(t, result.Records, len(items))

	assert.Equal(t, before, ids(items))
}

func TestRunIsIdempotent(t *testing.T) {
	engine := newItemEngine(t)
	spec := Spec{
		Query:     "o",
		Filters:   map[string][]string{"status": {"open"}},
		Sort:      "words",
		Direction: Descending,
		Now:       refNow,
	}

	first := engine.Run(sampleItems(), spec)
	second := engine.Run(sampleItems(), spec)

	assert.Equal(t, first, second)
}

func TestRunEmptySelectionIsUnfiltered(t *testing.T) {
	engine := newItemEngine(t)
	items := sampleItems()

	omitted := engine.Run(items, Spec{Now: refNow})
	empty := engine.Run(items, Spec{
		Filters: map[string][]string{"color": {}, "status": nil},
		Ranges:  map[string]Range{"words": {}},
		Now:     refNow,
	})

	assert.Equal(t, ids(omitted.Records), ids(empty.Records))
	assert.Len(t, empty.Records, len(items))
}

func TestRunFilterMonotonicity(t *testing.T) {
	engine := newItemEngine(t)
	items := sampleItems()

	values := []string{"blue", "green", "red", "purple"}
	previous := 0
	for i := range values {
		spec := Spec{Filters: map[string][]string{"color": values[:i+1]}, Now: refNow}
		got := len(engine.Run(items, spec).Records)
		assert.GreaterOrEqual(t, got, previous, "adding %q shrank the result", values[i])
		previous = got
	}
}

func TestRunAndAcrossCategoriesOrWithin(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(sampleItems(), Spec{
		Filters: map[string][]string{
			"color":  {"blue", "green"},
			"status": {"open"},
		},
		Now: refNow,
	})

	assert.ElementsMatch(t, []int64{2, 4}, ids(result.Records))
}

func TestRunRecordWithoutValueFailsConstrainedCategory(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(sampleItems(), Spec{
		Filters: map[string][]string{"color": {""}},
		Now:     refNow,
	})

	assert.Empty(t, result.Records)
}

func TestRunMultiValuedCategory(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(sampleItems(), Spec{
		Filters: map[string][]string{"tag": {"review"}},
		Now:     refNow,
	})

	assert.Equal(t, []int64{3}, ids(result.Records))
	assert.Equal(t, 2, result.Count("tag", "work"))
}

func TestRunNumericRangeInclusive(t *testing.T) {
	engine := newItemEngine(t)
	items := []item{
		{id: 1, words: 40, hasWords: true},
		{id: 2, words: 60, hasWords: true},
		{id: 3, words: 90, hasWords: true},
		{id: 4, words: 50, hasWords: true},
		{id: 5, words: 80, hasWords: true},
		{id: 6},
	}
	lo, hi := 50.0, 80.0

	result := engine.Run(items, Spec{Ranges: map[string]Range{"words": {Min: &lo, Max: &hi}}, Now: refNow})
	assert.ElementsMatch(t, []int64{2, 4, 5}, ids(result.Records))

	result = engine.Run(items, Spec{Ranges: map[string]Range{"words": {Min: &hi}}, Now: refNow})
	assert.ElementsMatch(t, []int64{3, 5}, ids(result.Records))
}

func TestRunCustomDateRange(t *testing.T) {
	engine := newItemEngine(t)
	from := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	result := engine.Run(sampleItems(), Spec{
		Dates: map[string]DateRange{"when": {From: &from, To: &to}},
		Now:   refNow,
	})

	assert.ElementsMatch(t, []int64{2, 3, 5}, ids(result.Records))
}

func TestRunTextQuery(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(sampleItems(), Spec{Query: "  FOCUS ", Sort: "title", Now: refNow})
	assert.Equal(t, []int64{4, 3}, ids(result.Records))

	result = engine.Run(sampleItems(), Spec{Query: "family", Now: refNow})
	assert.Equal(t, []int64{5}, ids(result.Records))
}

func TestRunCountsCoverWholeCollection(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(sampleItems(), Spec{
		Query:   "groceries",
		Filters: map[string][]string{"status": {"done"}},
		Now:     refNow,
	})

	assert.Empty(t, result.Records)
	assert.Equal(t, map[string]int{"blue": 2, "green": 1, "red": 1}, result.Counts["color"])
	assert.Equal(t, map[string]int{"open": 4, "done": 1}, result.Counts["status"])
	assert.Equal(t, 1, result.Count("when", BucketOverdue))
	assert.Equal(t, 1, result.Count("when", BucketNoDate))
	assert.Equal(t, 1, result.Count("when", BucketToday))
}

func TestRunEmptyCollection(t *testing.T) {
	engine := newItemEngine(t)

	result := engine.Run(nil, Spec{Query: "x", Filters: map[string][]string{"status": {"open"}}, Now: refNow})

	assert.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, map[string]int{"open": 0, "done": 0}, result.Counts["status"])
	assert.Empty(t, result.Counts["color"])
	for _, bucket := range DueBuckets {
		assert.Equal(t, 0, result.Counts["when"][bucket])
	}
}

func TestRunReportsIgnoredSpecParts(t *testing.T) {
	var got []Diagnostic
	engine := newItemEngine(t, WithDiagnostics(func(d Diagnostic) { got = append(got, d) }))

	result := engine.Run(sampleItems(), Spec{
		Filters:   map[string][]string{"shape": {"round"}, "status": {"archived"}},
		Ranges:    map[string]Range{"pages": {}},
		Dates:     map[string]DateRange{"born": {}},
		Sort:      "size",
		Direction: "sideways",
		Now:       refNow,
	})

	assert.Equal(t, []Diagnostic{
		{Kind: UnknownCategory, Name: "shape"},
		{Kind: UnknownValue, Name: "status", Value: "archived"},
		{Kind: UnknownRange, Name: "pages"},
		{Kind: UnknownDateField, Name: "born"},
		{Kind: UnknownSortKey, Name: "size"},
		{Kind: InvalidDirection, Name: "direction", Value: "sideways"},
	}, got)

	// The unknown category is ignored, the bogus status value filters everything out.
	assert.Empty(t, result.Records)
}

func TestRunUnknownSortKeyOrdersByID(t *testing.T) {
	engine := newItemEngine(t)
	items := sampleItems()
	slices.Reverse(items)

	result := engine.Run(items, Spec{Sort: "size", Now: refNow})
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(result.Records))

	byCompare := slices.Clone(items)
	slices.SortStableFunc(byCompare, func(a, b item) int {
		return engine.Compare(a, b, "size", Descending)
	})
	assert.Equal(t, ids(byCompare), ids(result.Records))
}

func TestPassesIgnoresText(t *testing.T) {
	engine := newItemEngine(t)
	record := sampleItems()[0]

	assert.True(t, engine.Passes(record, Spec{Query: "nothing like it", Now: refNow}))
	assert.True(t, engine.Passes(record, Spec{Filters: map[string][]string{"color": {"blue"}}, Now: refNow}))
	assert.False(t, engine.Passes(record, Spec{Filters: map[string][]string{"color": {"red"}}, Now: refNow}))
}
