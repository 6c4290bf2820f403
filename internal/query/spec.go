// Package query filters and orders in-memory record collections.
//
// An Engine is built once from a Schema describing how to read a record type
// (text fields, categories, numeric ranges, dates, sort keys) and is then run
// against any number of collections with a Spec. Runs are pure: the engine
// holds no mutable state and never modifies the records it is given.
package query

import (
	"slices"
	"strings"
	"time"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(value string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	default:
		return "", false
	}
}

func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Range is an inclusive numeric bound. A nil side is unbounded.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

func (r Range) Contains(value float64) bool {
	if r.Min != nil && value < *r.Min {
		return false
	}
	if r.Max != nil && value > *r.Max {
		return false
	}
	return true
}

// DateRange is an inclusive range of calendar days. A nil side is unbounded.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Spec is the caller-owned description of a single query run.
type Spec struct {
	Query     string               `json:"query"`
	Filters   map[string][]string  `json:"filters,omitempty"`
	Ranges    map[string]Range     `json:"ranges,omitempty"`
	Dates     map[string]DateRange `json:"dates,omitempty"`
	Sort      string               `json:"sort,omitempty"`
	Direction Direction            `json:"direction,omitempty"`

	// Now anchors every calendar computation of the run. It is never read
	// from the system clock by the engine.
	Now time.Time `json:"-"`
}

// Clone returns a deep copy so callers can derive a new spec without
// touching one that may still be in use.
func (s Spec) Clone() Spec {
	out := s
	if s.Filters != nil {
		out.Filters = make(map[string][]string, len(s.Filters))
		for name, values := range s.Filters {
			out.Filters[name] = slices.Clone(values)
		}
	}
	if s.Ranges != nil {
		out.Ranges = make(map[string]Range, len(s.Ranges))
		for name, r := range s.Ranges {
			out.Ranges[name] = r
		}
	}
	if s.Dates != nil {
		out.Dates = make(map[string]DateRange, len(s.Dates))
		for name, r := range s.Dates {
			out.Dates[name] = r
		}
	}
	return out
}

// Toggle adds value to the category's accepted set, or removes it when it is
// already present. The receiver is left untouched.
func (s Spec) Toggle(category, value string) Spec {
	out := s.Clone()
	if out.Filters == nil {
		out.Filters = make(map[string][]string)
	}
	values := out.Filters[category]
	if idx := slices.Index(values, value); idx >= 0 {
		values = slices.Delete(values, idx, idx+1)
	} else {
		values = append(values, value)
	}
	if len(values) == 0 {
		delete(out.Filters, category)
	} else {
		out.Filters[category] = values
	}
	return out
}

func (s Spec) Selected(category, value string) bool {
	return slices.Contains(s.Filters[category], value)
}

// ActiveFilters counts accepted values across all categories plus every
// constrained range and date range.
func (s Spec) ActiveFilters() int {
	count := 0
	for _, values := range s.Filters {
		count += len(values)
	}
	for _, r := range s.Ranges {
		if !r.IsZero() {
			count++
		}
	}
	for _, r := range s.Dates {
		if !r.IsZero() {
			count++
		}
	}
	return count
}

// ClearFilters keeps the text query and sort but drops every constraint.
func (s Spec) ClearFilters() Spec {
	out := s
	out.Filters = nil
	out.Ranges = nil
	out.Dates = nil
	return out
}
