package model

import (
	"time"

	"github.com/Joseda-hg/mindtask/internal/query"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []string{string(PriorityHigh), string(PriorityMedium), string(PriorityLow)}

// Rank orders priorities high=3, medium=2, low=1. Unknown priorities have no rank.
func (p Priority) Rank() (int, bool) {
	switch p {
	case PriorityHigh:
		return 3, true
	case PriorityMedium:
		return 2, true
	case PriorityLow:
		return 1, true
	default:
		return 0, false
	}
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

var Statuses = []string{string(StatusPending), string(StatusInProgress), string(StatusCompleted)}

type Note struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Tags       []string  `json:"tags"`
	Emotion    string    `json:"emotion"`
	Intensity  float64   `json:"intensity"`
	WordCount  int       `json:"word_count"`
	Bookmarked bool      `json:"bookmarked"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Emotion     string     `json:"emotion"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Subtasks    []Subtask  `json:"subtasks"`
}

type Subtask struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Progress is the completed share of subtasks in [0,1]. A task without
// subtasks reports ok=false.
func (t Task) Progress() (float64, bool) {
	if len(t.Subtasks) == 0 {
		return 0, false
	}
	done := 0
	for _, subtask := range t.Subtasks {
		if subtask.Completed {
			done++
		}
	}
	return float64(done) / float64(len(t.Subtasks)), true
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type Scope string

const (
	ScopeNotes Scope = "notes"
	ScopeTasks Scope = "tasks"
)

// View is a named, persisted query over one scope.
type View struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Scope     Scope      `json:"scope"`
	Spec      query.Spec `json:"spec"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type RecentSearch struct {
	Query      string    `json:"query"`
	Scope      Scope     `json:"scope"`
	SearchedAt time.Time `json:"searched_at"`
}
