package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	logger       *zap.Logger
	onDiagnostic func(Diagnostic)
}

// WithLogger sends diagnostics to logger at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDiagnostics registers a callback invoked for every ignored part of a Spec.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(o *options) {
		o.onDiagnostic = fn
	}
}

// Engine runs Specs against collections of R. It is immutable after
// construction and safe for concurrent use.
type Engine[R any] struct {
	schema     Schema[R]
	categories map[string]int
	ranges     map[string]int
	dates      map[string]int
	sortKeys   map[string]SortKey[R]

	logger       *zap.Logger
	onDiagnostic func(Diagnostic)
}

// Result is the outcome of a run. Counts maps every category to the number of
// records in the whole input holding each value, independent of the Spec.
type Result[R any] struct {
	Records []R
	Counts  map[string]map[string]int
	Total   int
}

func (r Result[R]) Count(category, value string) int {
	return r.Counts[category][value]
}

func NewEngine[R any](schema Schema[R], opts ...Option) (*Engine[R], error) {
	if schema.ID == nil {
		return nil, fmt.Errorf("schema: ID accessor is required")
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[R]{
		schema:       schema,
		categories:   make(map[string]int, len(schema.Categories)),
		ranges:       make(map[string]int, len(schema.Ranges)),
		dates:        make(map[string]int, len(schema.Dates)),
		sortKeys:     make(map[string]SortKey[R], len(schema.SortKeys)),
		logger:       o.logger,
		onDiagnostic: o.onDiagnostic,
	}

	for i, category := range schema.Categories {
		if category.Values == nil {
			return nil, fmt.Errorf("schema: category %q has no Values accessor", category.Name)
		}
		if _, ok := e.categories[category.Name]; ok {
			return nil, fmt.Errorf("schema: duplicate category %q", category.Name)
		}
		e.categories[category.Name] = i
	}
	for i, field := range schema.Ranges {
		if field.Value == nil {
			return nil, fmt.Errorf("schema: range %q has no Value accessor", field.Name)
		}
		e.ranges[field.Name] = i
	}
	for i, field := range schema.Dates {
		if field.Value == nil {
			return nil, fmt.Errorf("schema: date field %q has no Value accessor", field.Name)
		}
		e.dates[field.Name] = i
	}
	for _, key := range schema.SortKeys {
		if err := validateSortKey(key); err != nil {
			return nil, err
		}
		if key.Direction == "" {
			key.Direction = Ascending
		}
		e.sortKeys[key.Name] = key
	}
	if schema.DefaultSort != "" {
		if _, ok := e.sortKeys[schema.DefaultSort]; !ok {
			return nil, fmt.Errorf("schema: default sort %q is not a sort key", schema.DefaultSort)
		}
	}

	return e, nil
}

func Must[R any](e *Engine[R], err error) *Engine[R] {
	if err != nil {
		panic(err)
	}
	return e
}

func validateSortKey[R any](key SortKey[R]) error {
	var ok bool
	switch key.Kind {
	case ByDate:
		ok = key.Date != nil
	case ByText:
		ok = key.Text != nil
	case ByRank, ByNumber:
		ok = key.Number != nil
	}
	if !ok {
		return fmt.Errorf("schema: sort key %q lacks an accessor for its kind", key.Name)
	}
	return nil
}

// Categories returns category names in schema order.
func (e *Engine[R]) Categories() []string {
	names := make([]string, 0, len(e.schema.Categories))
	for _, category := range e.schema.Categories {
		names = append(names, category.Name)
	}
	return names
}

func (e *Engine[R]) HasCategory(name string) bool {
	_, ok := e.categories[name]
	return ok
}

// Options returns the declared values of a closed category, or nil.
func (e *Engine[R]) Options(category string) []string {
	idx, ok := e.categories[category]
	if !ok {
		return nil
	}
	return slices.Clone(e.schema.Categories[idx].Options)
}

func (e *Engine[R]) SortKeys() []string {
	names := make([]string, 0, len(e.schema.SortKeys))
	for _, key := range e.schema.SortKeys {
		names = append(names, key.Name)
	}
	return names
}

func (e *Engine[R]) DefaultSort() string {
	return e.schema.DefaultSort
}

// SortDirection returns the direction a key uses when a Spec leaves it empty.
func (e *Engine[R]) SortDirection(key string) Direction {
	if k, ok := e.sortKeys[key]; ok {
		return k.Direction
	}
	return Ascending
}

func (e *Engine[R]) HasRange(name string) bool {
	_, ok := e.ranges[name]
	return ok
}

func (e *Engine[R]) HasDateField(name string) bool {
	_, ok := e.dates[name]
	return ok
}

// Matches applies the schema's text fields to query.
func (e *Engine[R]) Matches(record R, query string) bool {
	return Matches(record, e.schema.Text, e.schema.Tags, query)
}

// Passes reports whether record satisfies every category, range and date
// constraint of spec. The text query is not consulted.
func (e *Engine[R]) Passes(record R, spec Spec) bool {
	p := e.compile(spec)
	for i, category := range e.schema.Categories {
		if accepted := p.filters[i]; accepted != nil {
			if !intersects(category.Values(record, spec.Now), accepted) {
				return false
			}
		}
	}
	return p.passesBounds(e, record)
}

// Run filters records by spec and orders the survivors. records is never
// modified; the returned slice is newly allocated.
func (e *Engine[R]) Run(records []R, spec Spec) Result[R] {
	p := e.compile(spec)

	counts := make(map[string]map[string]int, len(e.schema.Categories))
	for _, category := range e.schema.Categories {
		counts[category.Name] = make(map[string]int, len(category.Options))
		for _, option := range category.Options {
			counts[category.Name][option] = 0
		}
	}

	kept := make([]R, 0, len(records))
	for _, record := range records {
		ok := true
		for i, category := range e.schema.Categories {
			values := category.Values(record, spec.Now)
			tally(counts[category.Name], values)
			if ok && p.filters[i] != nil && !intersects(values, p.filters[i]) {
				ok = false
			}
		}
		if !ok || !p.passesBounds(e, record) {
			continue
		}
		if p.needle != "" && !matchFolded(record, e.schema.Text, e.schema.Tags, p.needle) {
			continue
		}
		kept = append(kept, record)
	}

	e.sortRecords(kept, p.sortKey, p.direction)

	return Result[R]{Records: kept, Counts: counts, Total: len(records)}
}

// plan is a Spec resolved against the schema.
type plan[R any] struct {
	needle    string
	filters   []map[string]struct{}
	ranges    map[int]Range
	dates     map[int]DateRange
	loc       *time.Location
	sortKey   *SortKey[R]
	direction Direction
}

func (e *Engine[R]) compile(spec Spec) plan[R] {
	p := plan[R]{
		filters: make([]map[string]struct{}, len(e.schema.Categories)),
		loc:     spec.Now.Location(),
	}
	if needle := strings.TrimSpace(spec.Query); needle != "" {
		p.needle = fold(needle)
	}

	for _, name := range sortedKeys(spec.Filters) {
		values := spec.Filters[name]
		idx, ok := e.categories[name]
		if !ok {
			e.report(Diagnostic{Kind: UnknownCategory, Name: name})
			continue
		}
		if len(values) == 0 {
			continue
		}
		category := e.schema.Categories[idx]
		accepted := make(map[string]struct{}, len(values))
		for _, value := range values {
			if len(category.Options) > 0 && !slices.Contains(category.Options, value) {
				e.report(Diagnostic{Kind: UnknownValue, Name: name, Value: value})
			}
			accepted[value] = struct{}{}
		}
		p.filters[idx] = accepted
	}

	for _, name := range sortedKeys(spec.Ranges) {
		r := spec.Ranges[name]
		idx, ok := e.ranges[name]
		if !ok {
			e.report(Diagnostic{Kind: UnknownRange, Name: name})
			continue
		}
		if r.IsZero() {
			continue
		}
		if p.ranges == nil {
			p.ranges = make(map[int]Range)
		}
		p.ranges[idx] = r
	}

	for _, name := range sortedKeys(spec.Dates) {
		r := spec.Dates[name]
		idx, ok := e.dates[name]
		if !ok {
			e.report(Diagnostic{Kind: UnknownDateField, Name: name})
			continue
		}
		if r.IsZero() {
			continue
		}
		if p.dates == nil {
			p.dates = make(map[int]DateRange)
		}
		p.dates[idx] = r
	}

	keyName := spec.Sort
	if keyName == "" {
		keyName = e.schema.DefaultSort
	}
	if keyName != "" {
		if key, ok := e.sortKeys[keyName]; ok {
			p.sortKey = &key
			p.direction = key.Direction
		} else {
			e.report(Diagnostic{Kind: UnknownSortKey, Name: keyName})
		}
	}
	if spec.Direction != "" {
		if dir, ok := ParseDirection(string(spec.Direction)); ok {
			p.direction = dir
		} else {
			e.report(Diagnostic{Kind: InvalidDirection, Name: "direction", Value: string(spec.Direction)})
		}
	}

	return p
}

func (p plan[R]) passesBounds(e *Engine[R], record R) bool {
	for idx, r := range p.ranges {
		value, ok := e.schema.Ranges[idx].Value(record)
		if !ok || !r.Contains(value) {
			return false
		}
	}
	for idx, r := range p.dates {
		date := e.schema.Dates[idx].Value(record)
		if date == nil || !r.contains(*date, p.loc) {
			return false
		}
	}
	return true
}

func (e *Engine[R]) report(d Diagnostic) {
	e.logger.Debug("query spec ignored",
		zap.String("kind", string(d.Kind)),
		zap.String("name", d.Name),
		zap.String("value", d.Value),
	)
	if e.onDiagnostic != nil {
		e.onDiagnostic(d)
	}
}

func intersects(values []string, accepted map[string]struct{}) bool {
	for _, value := range values {
		if _, ok := accepted[value]; ok {
			return true
		}
	}
	return false
}

// tally counts each distinct value once per record.
func tally(counts map[string]int, values []string) {
	for i, value := range values {
		if slices.Contains(values[:i], value) {
			continue
		}
		counts[value]++
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
