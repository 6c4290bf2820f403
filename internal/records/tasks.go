package records

import (
	"time"

	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
)

const (
	TaskStatus   = "status"
	TaskPriority = "priority"
	TaskEmotion  = "emotion"
	TaskCategory = "category"
	TaskDue      = "due"

	TaskProgress = "progress"
	TaskCreated  = "created"

	SortDue      = "due"
	SortPriority = "priority"
	SortCreated  = "created"
)

func TaskSchema() query.Schema[model.Task] {
	return query.Schema[model.Task]{
		ID: func(t model.Task) int64 { return t.ID },
		Text: []func(model.Task) string{
			func(t model.Task) string { return t.Title },
			func(t model.Task) string { return t.Description },
		},
		Tags: []func(model.Task) []string{
			func(t model.Task) []string { return single(t.Category) },
		},
		Categories: []query.Category[model.Task]{
			{
				Name:    TaskStatus,
				Options: model.Statuses,
				Values:  func(t model.Task, _ time.Time) []string { return single(string(t.Status)) },
			},
			{
				Name:    TaskPriority,
				Options: model.Priorities,
				Values:  func(t model.Task, _ time.Time) []string { return single(string(t.Priority)) },
			},
			{
				Name:   TaskEmotion,
				Values: func(t model.Task, _ time.Time) []string { return single(t.Emotion) },
			},
			{
				Name:   TaskCategory,
				Values: func(t model.Task, _ time.Time) []string { return single(t.Category) },
			},
			{
				Name:    TaskDue,
				Options: query.DueBuckets,
				Values: func(t model.Task, now time.Time) []string {
					return query.ClassifyDue(t.DueAt, t.Status == model.StatusCompleted, now)
				},
			},
		},
		Ranges: []query.NumericField[model.Task]{
			{
				Name:  TaskProgress,
				Value: progressPercent,
			},
		},
		Dates: []query.DateField[model.Task]{
			{
				Name:  TaskDue,
				Value: func(t model.Task) *time.Time { return t.DueAt },
			},
			{
				Name:  TaskCreated,
				Value: func(t model.Task) *time.Time { return timeOrNil(t.CreatedAt) },
			},
		},
		SortKeys: []query.SortKey[model.Task]{
			{
				Name: SortDue,
				Kind: query.ByDate,
				Date: func(t model.Task) *time.Time { return t.DueAt },
			},
			{
				Name:      SortPriority,
				Kind:      query.ByRank,
				Direction: query.Descending,
				Number:    priorityRank,
			},
			{
				Name:      SortCreated,
				Kind:      query.ByDate,
				Direction: query.Descending,
				Date:      func(t model.Task) *time.Time { return timeOrNil(t.CreatedAt) },
			},
			{
				Name:      SortUpdated,
				Kind:      query.ByDate,
				Direction: query.Descending,
				Date:      func(t model.Task) *time.Time { return timeOrNil(t.UpdatedAt) },
			},
			{
				Name: SortAlphabetical,
				Kind: query.ByText,
				Text: func(t model.Task) string { return t.Title },
			},
		},
		DefaultSort: SortDue,
	}
}

func Tasks(opts ...query.Option) *query.Engine[model.Task] {
	return query.Must(query.NewEngine(TaskSchema(), opts...))
}

func priorityRank(t model.Task) (float64, bool) {
	rank, ok := t.Priority.Rank()
	return float64(rank), ok
}

func progressPercent(t model.Task) (float64, bool) {
	progress, ok := t.Progress()
	return progress * 100, ok
}
