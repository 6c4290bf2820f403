package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
)

type filterEntry struct {
	Category string
	Value    string
	Count    int
	Selected bool
}

// buildFilterEntries flattens result counts into one pane row per category
// value, declared options first.
func buildFilterEntries(categories []string, options func(string) []string, counts map[string]map[string]int, spec query.Spec) []filterEntry {
	var entries []filterEntry
	for _, category := range categories {
		for _, value := range query.OrderedValues(options(category), counts[category]) {
			entries = append(entries, filterEntry{
				Category: category,
				Value:    value,
				Count:    counts[category][value],
				Selected: spec.Selected(category, value),
			})
		}
	}
	return entries
}

func relative(t time.Time, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func formatNoteSummary(note model.Note, now time.Time) string {
	marker := " "
	if note.Bookmarked {
		marker = "*"
	}
	return fmt.Sprintf("%s %s | %s | %s", marker, note.Title, valueOr(note.Emotion, "none"), relative(note.CreatedAt, now))
}

func formatTaskSummary(task model.Task, now time.Time) string {
	check := "[ ]"
	if task.Status == model.StatusCompleted {
		check = "[x]"
	}
	due := "no due date"
	if task.DueAt != nil {
		due = "due " + relative(*task.DueAt, now)
	}
	return fmt.Sprintf("%s %s | %s | %s", check, task.Title, task.Priority, due)
}

func noteDetail(note model.Note, now time.Time) []string {
	lines := []string{
		note.Title,
		"",
		fmt.Sprintf("Emotion: %s (%.0f%%)", valueOr(note.Emotion, "none"), note.Intensity*100),
		"Tags: " + valueOr(strings.Join(note.Tags, ", "), "none"),
		fmt.Sprintf("Words: %s", humanize.Comma(int64(note.WordCount))),
		"Created: " + relative(note.CreatedAt, now),
	}
	if !query.SameDay(note.UpdatedAt, note.CreatedAt, now.Location()) {
		lines = append(lines, "Updated: "+relative(note.UpdatedAt, now))
	}
	if note.Bookmarked {
		lines = append(lines, "Bookmarked")
	}
	if note.Archived {
		lines = append(lines, "Archived")
	}
	if body := strings.TrimSpace(note.Body); body != "" {
		lines = append(lines, "", body)
	}
	return lines
}

func taskDetail(task model.Task, history []model.HistoryEntry, now time.Time) []string {
	due := "none"
	if task.DueAt != nil {
		due = fmt.Sprintf("%s (%s)", task.DueAt.In(now.Location()).Format("2006-01-02"), relative(*task.DueAt, now))
	}
	lines := []string{
		task.Title,
		"",
		fmt.Sprintf("Status: %s | Priority: %s", task.Status, task.Priority),
		"Category: " + valueOr(task.Category, "none"),
		"Emotion: " + valueOr(task.Emotion, "none"),
		"Due: " + due,
	}
	if progress, ok := task.Progress(); ok {
		lines = append(lines, fmt.Sprintf("Progress: %.0f%%", progress*100))
		for _, subtask := range task.Subtasks {
			mark := " "
			if subtask.Completed {
				mark = "x"
			}
			lines = append(lines, fmt.Sprintf("  [%s] %s", mark, subtask.Title))
		}
	}
	if description := strings.TrimSpace(task.Description); description != "" {
		lines = append(lines, "", description)
	}
	if len(history) > 0 {
		lines = append(lines, "", "History:")
		for _, entry := range history {
			lines = append(lines, fmt.Sprintf("  %s %s", relative(entry.CreatedAt, now), entry.Details))
		}
	}
	return lines
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
