// Package records binds the note and task models to the query engine.
package records

import (
	"strconv"
	"time"

	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
)

const (
	NoteEmotion    = "emotion"
	NoteIntensity  = "intensity"
	NoteCreated    = "created"
	NoteBookmarked = "bookmarked"
	NoteHasTags    = "has-tags"
	NoteArchived   = "archived"
	NoteTag        = "tag"

	NoteWords = "words"

	SortDate         = "date"
	SortUpdated      = "updated"
	SortAlphabetical = "alphabetical"
	SortEmotion      = "emotion"
	SortWords        = "words"
)

const (
	IntensityLow    = "low"
	IntensityMedium = "medium"
	IntensityHigh   = "high"
)

var (
	IntensityLevels = []string{IntensityLow, IntensityMedium, IntensityHigh}
	Flags           = []string{"true", "false"}
)

// IntensityLevel buckets an emotion intensity: up to 0.33 is low, up to 0.66
// is medium, anything above is high.
func IntensityLevel(intensity float64) string {
	switch {
	case intensity <= 0.33:
		return IntensityLow
	case intensity <= 0.66:
		return IntensityMedium
	default:
		return IntensityHigh
	}
}

func NoteSchema() query.Schema[model.Note] {
	return query.Schema[model.Note]{
		ID: func(n model.Note) int64 { return n.ID },
		Text: []func(model.Note) string{
			func(n model.Note) string { return n.Title },
			func(n model.Note) string { return n.Body },
		},
		Tags: []func(model.Note) []string{
			func(n model.Note) []string { return n.Tags },
		},
		Categories: []query.Category[model.Note]{
			{
				Name:   NoteEmotion,
				Values: func(n model.Note, _ time.Time) []string { return single(n.Emotion) },
			},
			{
				Name:    NoteIntensity,
				Options: IntensityLevels,
				Values: func(n model.Note, _ time.Time) []string {
					return []string{IntensityLevel(n.Intensity)}
				},
			},
			{
				Name:    NoteCreated,
				Options: query.CreatedBuckets,
				Values: func(n model.Note, now time.Time) []string {
					return query.Classify(timeOrNil(n.CreatedAt), now)
				},
			},
			{
				Name:    NoteBookmarked,
				Options: Flags,
				Values:  func(n model.Note, _ time.Time) []string { return flag(n.Bookmarked) },
			},
			{
				Name:    NoteHasTags,
				Options: Flags,
				Values:  func(n model.Note, _ time.Time) []string { return flag(len(n.Tags) > 0) },
			},
			{
				Name:    NoteArchived,
				Options: Flags,
				Values:  func(n model.Note, _ time.Time) []string { return flag(n.Archived) },
			},
			{
				Name:   NoteTag,
				Values: func(n model.Note, _ time.Time) []string { return n.Tags },
			},
		},
		Ranges: []query.NumericField[model.Note]{
			{
				Name:  NoteWords,
				Value: func(n model.Note) (float64, bool) { return float64(n.WordCount), true },
			},
		},
		Dates: []query.DateField[model.Note]{
			{
				Name:  NoteCreated,
				Value: func(n model.Note) *time.Time { return timeOrNil(n.CreatedAt) },
			},
		},
		SortKeys: []query.SortKey[model.Note]{
			{
				Name:      SortDate,
				Kind:      query.ByDate,
				Direction: query.Descending,
				Date:      func(n model.Note) *time.Time { return timeOrNil(n.CreatedAt) },
			},
			{
				Name:      SortUpdated,
				Kind:      query.ByDate,
				Direction: query.Descending,
				Date:      func(n model.Note) *time.Time { return timeOrNil(n.UpdatedAt) },
			},
			{
				Name: SortAlphabetical,
				Kind: query.ByText,
				Text: func(n model.Note) string { return n.Title },
			},
			{
				Name: SortEmotion,
				Kind: query.ByText,
				Text: func(n model.Note) string { return n.Emotion },
			},
			{
				Name:      SortWords,
				Kind:      query.ByNumber,
				Direction: query.Descending,
				Number:    func(n model.Note) (float64, bool) { return float64(n.WordCount), true },
			},
		},
		DefaultSort: SortDate,
	}
}

func Notes(opts ...query.Option) *query.Engine[model.Note] {
	return query.Must(query.NewEngine(NoteSchema(), opts...))
}

func single(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}

func flag(value bool) []string {
	return []string{strconv.FormatBool(value)}
}

// A zero time means the attribute was never set.
func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
