package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// order compares a and b on the key alone. Records missing the value sort
// after every record that has one, whichever the direction.
func (k SortKey[R]) order(a, b R, dir Direction) int {
	switch k.Kind {
	case ByDate:
		da, db := k.Date(a), k.Date(b)
		return directed(da != nil, db != nil, dir, func() int { return da.Compare(*db) })
	case ByText:
		ta, tb := strings.TrimSpace(k.Text(a)), strings.TrimSpace(k.Text(b))
		return directed(ta != "", tb != "", dir, func() int { return strings.Compare(fold(ta), fold(tb)) })
	case ByRank, ByNumber:
		na, okA := k.Number(a)
		nb, okB := k.Number(b)
		return directed(okA, okB, dir, func() int { return cmp.Compare(na, nb) })
	default:
		return 0
	}
}

func directed(hasA, hasB bool, dir Direction, compare func() int) int {
	switch {
	case !hasA && !hasB:
		return 0
	case !hasA:
		return 1
	case !hasB:
		return -1
	}
	c := compare()
	if dir == Descending {
		return -c
	}
	return c
}

// Compare orders a and b by the named sort key and direction, breaking ties
// by ascending identifier. An unknown key compares by identifier only.
func (e *Engine[R]) Compare(a, b R, key string, dir Direction) int {
	k, ok := e.sortKeys[key]
	if !ok {
		return e.compareWith(a, b, nil, dir)
	}
	if dir == "" {
		dir = k.Direction
	}
	return e.compareWith(a, b, &k, dir)
}

func (e *Engine[R]) compareWith(a, b R, key *SortKey[R], dir Direction) int {
	if key != nil {
		if c := key.order(a, b, dir); c != 0 {
			return c
		}
	}
	return cmp.Compare(e.schema.ID(a), e.schema.ID(b))
}

type foldedRecord[R any] struct {
	record R
	text   string
	has    bool
}

// sortRecords orders records in place with the same ordering as Compare.
// A nil key leaves identifier order. Text keys are folded once per record.
func (e *Engine[R]) sortRecords(records []R, key *SortKey[R], dir Direction) {
	if key == nil || key.Kind != ByText {
		slices.SortStableFunc(records, func(a, b R) int {
			return e.compareWith(a, b, key, dir)
		})
		return
	}

	caser := cases.Fold()
	folded := make([]foldedRecord[R], len(records))
	for i, record := range records {
		text := strings.TrimSpace(key.Text(record))
		folded[i] = foldedRecord[R]{record: record, text: caser.String(text), has: text != ""}
	}
	slices.SortStableFunc(folded, func(a, b foldedRecord[R]) int {
		c := directed(a.has, b.has, dir, func() int { return strings.Compare(a.text, b.text) })
		if c != 0 {
			return c
		}
		return cmp.Compare(e.schema.ID(a.record), e.schema.ID(b.record))
	})
	for i := range folded {
		records[i] = folded[i].record
	}
}
