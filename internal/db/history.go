package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/mindtask/internal/model"
)

func formatCreatedDetails(task model.Task) string {
	return fmt.Sprintf("created: title='%s' status=%s priority=%s category=%s due=%s subtasks=%s",
		task.Title, task.Status, task.Priority, valueOrNone(task.Category), formatDue(task.DueAt), formatSubtasks(task.Subtasks))
}

func formatDeletedDetails(task model.Task) string {
	return fmt.Sprintf("deleted: title='%s' status=%s priority=%s category=%s due=%s subtasks=%s",
		task.Title, task.Status, task.Priority, valueOrNone(task.Category), formatDue(task.DueAt), formatSubtasks(task.Subtasks))
}

func formatTaskDiff(before, after model.Task) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if before.Category != after.Category {
		changes = append(changes, formatChange("category", before.Category, after.Category))
	}
	if before.Status != after.Status {
		changes = append(changes, formatChange("status", string(before.Status), string(after.Status)))
	}
	if before.Priority != after.Priority {
		changes = append(changes, formatChange("priority", string(before.Priority), string(after.Priority)))
	}
	if before.Emotion != after.Emotion {
		changes = append(changes, formatChange("emotion", before.Emotion, after.Emotion))
	}
	if formatDue(before.DueAt) != formatDue(after.DueAt) {
		changes = append(changes, formatChange("due", formatDue(before.DueAt), formatDue(after.DueAt)))
	}
	beforeSubtasks := formatSubtasks(before.Subtasks)
	afterSubtasks := formatSubtasks(after.Subtasks)
	if beforeSubtasks != afterSubtasks {
		changes = append(changes, formatChange("subtasks", beforeSubtasks, afterSubtasks))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}

	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatDue(value *time.Time) string {
	if value == nil {
		return "none"
	}
	return value.Format("2006-01-02")
}

// formatSubtasks renders "done/total", e.g. "1/3".
func formatSubtasks(subtasks []model.Subtask) string {
	if len(subtasks) == 0 {
		return "none"
	}
	done := 0
	for _, subtask := range subtasks {
		if subtask.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(subtasks))
}
