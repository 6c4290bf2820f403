package query

import "time"

// Category is a filterable attribute. Values returns every value the record
// holds for it; single-valued attributes return one element, and an empty
// slice means the record has no value and fails any constraint on it.
//
// A category with Options is a closed set: counts always include every
// option, and filter values outside it are reported as diagnostics.
type Category[R any] struct {
	Name    string
	Options []string
	Values  func(record R, now time.Time) []string
}

// NumericField backs a Spec range. ok is false when the record lacks the value.
type NumericField[R any] struct {
	Name  string
	Value func(record R) (value float64, ok bool)
}

// DateField backs a Spec date range. A nil date fails a constrained range.
type DateField[R any] struct {
	Name  string
	Value func(record R) *time.Time
}

type SortKind int

const (
	ByDate SortKind = iota + 1
	ByRank
	ByText
	ByNumber
)

// SortKey defines one orderable attribute. Date is read for ByDate, Text for
// ByText and Number for ByRank and ByNumber. Direction is used when a Spec
// leaves its own direction empty.
type SortKey[R any] struct {
	Name      string
	Kind      SortKind
	Direction Direction
	Date      func(record R) *time.Time
	Text      func(record R) string
	Number    func(record R) (value float64, ok bool)
}

// Schema tells an Engine how to read records of type R.
type Schema[R any] struct {
	ID          func(record R) int64
	Text        []func(record R) string
	Tags        []func(record R) []string
	Categories  []Category[R]
	Ranges      []NumericField[R]
	Dates       []DateField[R]
	SortKeys    []SortKey[R]
	DefaultSort string
}
