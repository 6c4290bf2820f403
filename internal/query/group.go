package query

import (
	"slices"
	"time"
)

type Group[R any] struct {
	Value   string
	Records []R
}

// Group partitions records by the values of a category, keeping their order
// within each group. Declared options come first in declaration order, then
// any other observed values alphabetically. A multi-valued record appears in
// every group it holds a value for; records with no value end up in a trailing
// group whose Value is empty.
func (e *Engine[R]) Group(records []R, category string, now time.Time) []Group[R] {
	idx, ok := e.categories[category]
	if !ok {
		e.report(Diagnostic{Kind: UnknownCategory, Name: category})
		return nil
	}
	cat := e.schema.Categories[idx]

	byValue := make(map[string][]R)
	var ungrouped []R
	for _, record := range records {
		values := cat.Values(record, now)
		if len(values) == 0 {
			ungrouped = append(ungrouped, record)
			continue
		}
		for i, value := range values {
			if slices.Contains(values[:i], value) {
				continue
			}
			byValue[value] = append(byValue[value], record)
		}
	}

	groups := make([]Group[R], 0, len(cat.Options)+len(byValue)+1)
	for _, option := range cat.Options {
		groups = append(groups, Group[R]{Value: option, Records: byValue[option]})
	}
	for _, value := range sortedKeys(byValue) {
		if slices.Contains(cat.Options, value) {
			continue
		}
		groups = append(groups, Group[R]{Value: value, Records: byValue[value]})
	}
	if len(ungrouped) > 0 {
		groups = append(groups, Group[R]{Records: ungrouped})
	}
	return groups
}

// OrderedValues lists declared options first, then any other counted values
// alphabetically.
func OrderedValues(declared []string, counts map[string]int) []string {
	values := slices.Clone(declared)
	for _, value := range sortedKeys(counts) {
		if !slices.Contains(declared, value) {
			values = append(values, value)
		}
	}
	return values
}
