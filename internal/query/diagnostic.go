package query

import "fmt"

type DiagnosticKind string

const (
	UnknownCategory  DiagnosticKind = "unknown_category"
	UnknownValue     DiagnosticKind = "unknown_value"
	UnknownRange     DiagnosticKind = "unknown_range"
	UnknownDateField DiagnosticKind = "unknown_date_field"
	UnknownSortKey   DiagnosticKind = "unknown_sort_key"
	InvalidDirection DiagnosticKind = "invalid_direction"
)

// Diagnostic describes a part of a Spec the engine ignored. Diagnostics never
// change a run's outcome beyond the ignored part; they exist to surface
// programmer errors during development.
type Diagnostic struct {
	Kind  DiagnosticKind
	Name  string
	Value string
}

func (d Diagnostic) String() string {
	if d.Value == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Name)
	}
	return fmt.Sprintf("%s: %s=%s", d.Kind, d.Name, d.Value)
}
