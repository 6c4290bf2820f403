package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	record := sampleItems()[2]
	fields := itemSchema().Text
	tags := itemSchema().Tags

	tests := []struct {
		query string
		want  bool
	}{
		{query: "", want: true},
		{query: "   ", want: true},
		{query: "review", want: true},
		{query: "QUARTERLY", want: true},
		{query: "focus rev", want: true},
		{query: "WORK", want: true},
		{query: "rk", want: true},
		{query: "revue", want: false},
		{query: "groceries", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(record, fields, tags, tt.query))
		})
	}
}

func TestMatchesIsCaseInsensitive(t *testing.T) {
	fields := itemSchema().Text
	tags := itemSchema().Tags

	for _, record := range sampleItems() {
		assert.Equal(t,
			Matches(record, fields, tags, "focus"),
			Matches(record, fields, tags, "FOCUS"),
			"record %d", record.id)
	}

	accented := item{title: "ÉTÉ plans"}
	assert.True(t, Matches(accented, fields, tags, "été"))
}

func TestMatchesWithoutFields(t *testing.T) {
	assert.False(t, Matches(item{title: "x"}, nil, nil, "x"))
	assert.True(t, Matches(item{title: "x"}, nil, nil, ""))
}
