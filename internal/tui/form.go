package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/model"
)

type formField struct {
	Label   string
	Value   string
	Choices []string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldCategory
	fieldStatus
	fieldPriority
	fieldDue
)

const (
	fieldNoteTitle = iota
	fieldNoteBody
	fieldNoteTags
	fieldNoteEmotion
)

func buildTaskFormFields(task *model.Task, loc *time.Location) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: "Category"},
		{Label: "Status (space/←→)", Choices: model.Statuses},
		{Label: "Priority (space/←→)", Choices: model.Priorities},
		{Label: "Due (YYYY-MM-DD)"},
	}

	if task == nil {
		fields[fieldStatus].Value = string(model.StatusPending)
		fields[fieldPriority].Value = string(model.PriorityMedium)
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldDescription].Value = task.Description
	fields[fieldCategory].Value = task.Category
	fields[fieldStatus].Value = string(task.Status)
	fields[fieldPriority].Value = string(task.Priority)
	if task.DueAt != nil {
		fields[fieldDue].Value = task.DueAt.In(loc).Format("2006-01-02")
	}
	return fields
}

func buildNoteFormFields(note *model.Note) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Body"},
		{Label: "Tags (comma separated)"},
		{Label: "Emotion (blank to detect)"},
	}
	if note == nil {
		return fields
	}

	fields[fieldNoteTitle].Value = note.Title
	fields[fieldNoteBody].Value = note.Body
	fields[fieldNoteTags].Value = strings.Join(note.Tags, ",")
	fields[fieldNoteEmotion].Value = note.Emotion
	return fields
}

// parseTaskForm overlays the form onto base so edits keep subtasks.
func parseTaskForm(fields []formField, base db.TaskInput, loc *time.Location) (db.TaskInput, error) {
	dueAt, err := parseDue(fields[fieldDue].Value, loc)
	if err != nil {
		return db.TaskInput{}, err
	}

	input := base
	input.Title = strings.TrimSpace(fields[fieldTitle].Value)
	input.Description = strings.TrimSpace(fields[fieldDescription].Value)
	input.Category = strings.TrimSpace(fields[fieldCategory].Value)
	input.Status = fields[fieldStatus].Value
	input.Priority = fields[fieldPriority].Value
	input.DueAt = dueAt
	return input, nil
}

// parseNoteForm keeps the existing intensity only while the emotion is
// unchanged; a cleared emotion is detected again by the store.
func parseNoteForm(fields []formField, existing *model.Note) db.NoteInput {
	input := db.NoteInput{
		Title:   strings.TrimSpace(fields[fieldNoteTitle].Value),
		Body:    fields[fieldNoteBody].Value,
		Tags:    parseTags(fields[fieldNoteTags].Value),
		Emotion: strings.TrimSpace(fields[fieldNoteEmotion].Value),
	}
	if existing != nil {
		input.Bookmarked = existing.Bookmarked
		input.Archived = existing.Archived
		if input.Emotion != "" && strings.EqualFold(input.Emotion, existing.Emotion) {
			intensity := existing.Intensity
			input.Intensity = &intensity
		}
	}
	return input
}

// parseDue reads a calendar day and pins it to the end of the working day.
func parseDue(value string, loc *time.Location) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", trimmed, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid due date")
	}
	parsed = parsed.Add(17 * time.Hour)
	return &parsed, nil
}

func parseTags(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

func cycleChoice(choices []string, current string, delta int) string {
	if len(choices) == 0 {
		return current
	}
	index := 0
	for i, choice := range choices {
		if choice == current {
			index = i
			break
		}
	}
	index = (index + delta + len(choices)) % len(choices)
	return choices[index]
}
