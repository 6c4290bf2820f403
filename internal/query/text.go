package query

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matches reports whether query occurs as a case-insensitive substring of any
// text field or any element of any list field of record. A blank query
// matches every record.
func Matches[R any](record R, fields []func(R) string, tagFields []func(R) []string, query string) bool {
	needle := strings.TrimSpace(query)
	if needle == "" {
		return true
	}
	return matchFolded(record, fields, tagFields, fold(needle))
}

func matchFolded[R any](record R, fields []func(R) string, tagFields []func(R) []string, needle string) bool {
	for _, field := range fields {
		if strings.Contains(fold(field(record)), needle) {
			return true
		}
	}
	for _, field := range tagFields {
		for _, tag := range field(record) {
			if strings.Contains(fold(tag), needle) {
				return true
			}
		}
	}
	return false
}

// A Caser keeps internal state, so each call gets its own.
func fold(value string) string {
	return cases.Fold().String(value)
}
