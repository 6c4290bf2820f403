package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Joseda-hg/mindtask/internal/emotion"
	"github.com/Joseda-hg/mindtask/internal/model"
)

type NoteInput struct {
	Title      string   `validate:"required,max=200"`
	Body       string   `validate:"max=100000"`
	Tags       []string `validate:"dive,max=64"`
	Emotion    string   `validate:"max=32"`
	Intensity  *float64 `validate:"omitempty,min=0,max=1"`
	Bookmarked bool
	Archived   bool
}

// CreateNote stores a note. When no emotion is given the store's classifier
// labels the note from its title and body.
func (s *Store) CreateNote(ctx context.Context, input NoteInput) (model.Note, error) {
	input = s.prepareNoteInput(normalizeNoteInput(input))
	if err := s.validate.Struct(input); err != nil {
		return model.Note{}, fmt.Errorf("invalid note: %w", err)
	}

	now := s.now()
	var noteID int64
	err := s.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO notes (title, body, emotion, intensity, word_count, bookmarked, archived, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			input.Title, input.Body, input.Emotion, *input.Intensity, emotion.CountWords(input.Body),
			input.Bookmarked, input.Archived, formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		noteID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return replaceNoteTags(ctx, tx, noteID, input.Tags)
	})
	if err != nil {
		return model.Note{}, err
	}

	return s.GetNote(ctx, noteID)
}

func (s *Store) UpdateNote(ctx context.Context, noteID int64, input NoteInput) (model.Note, error) {
	input = s.prepareNoteInput(normalizeNoteInput(input))
	if err := s.validate.Struct(input); err != nil {
		return model.Note{}, fmt.Errorf("invalid note: %w", err)
	}

	err := s.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE notes SET title = ?, body = ?, emotion = ?, intensity = ?, word_count = ?, bookmarked = ?, archived = ?, updated_at = ?
			 WHERE id = ?`,
			input.Title, input.Body, input.Emotion, *input.Intensity, emotion.CountWords(input.Body),
			input.Bookmarked, input.Archived, formatTime(s.now()), noteID)
		if err != nil {
			return fmt.Errorf("update note: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}
		return replaceNoteTags(ctx, tx, noteID, input.Tags)
	})
	if err != nil {
		return model.Note{}, err
	}

	return s.GetNote(ctx, noteID)
}

func (s *Store) SetNoteBookmarked(ctx context.Context, noteID int64, bookmarked bool) (model.Note, error) {
	res, err := s.exec(ctx, "UPDATE notes SET bookmarked = ?, updated_at = ? WHERE id = ?",
		bookmarked, formatTime(s.now()), noteID)
	if err != nil {
		return model.Note{}, fmt.Errorf("update note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Note{}, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
	}
	return s.GetNote(ctx, noteID)
}

func (s *Store) DeleteNote(ctx context.Context, noteID int64) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id = ?", noteID); err != nil {
			return fmt.Errorf("delete note tags: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", noteID)
		if err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}
		return nil
	})
}

func (s *Store) GetNote(ctx context.Context, noteID int64) (model.Note, error) {
	note, err := scanNote(s.DB.QueryRowContext(ctx, noteSelect+" WHERE id = ?", noteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Note{}, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}
		return model.Note{}, err
	}

	tags, err := s.listNoteTags(ctx, "WHERE note_id = ?", noteID)
	if err != nil {
		return model.Note{}, err
	}
	note.Tags = tagsOrEmpty(tags[noteID])
	return note, nil
}

// ListNotes returns every note ordered by id.
func (s *Store) ListNotes(ctx context.Context) ([]model.Note, error) {
	rows, err := s.DB.QueryContext(ctx, noteSelect+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.listNoteTags(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i].Tags = tagsOrEmpty(tags[notes[i].ID])
	}
	return notes, nil
}

// ListTags returns the distinct note tags, case-insensitively sorted.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT DISTINCT tag FROM note_tags ORDER BY tag COLLATE NOCASE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

const noteSelect = `SELECT id, title, body, emotion, intensity, word_count, bookmarked, archived, created_at, updated_at FROM notes`

func scanNote(row rowScanner) (model.Note, error) {
	var note model.Note
	var createdAt, updatedAt string
	if err := row.Scan(&note.ID, &note.Title, &note.Body, &note.Emotion, &note.Intensity, &note.WordCount,
		&note.Bookmarked, &note.Archived, &createdAt, &updatedAt); err != nil {
		return model.Note{}, err
	}

	var err error
	if note.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Note{}, err
	}
	if note.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

func (s *Store) listNoteTags(ctx context.Context, where string, args ...any) (map[int64][]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT note_id, tag FROM note_tags "+where+" ORDER BY note_id, position", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]string)
	for rows.Next() {
		var noteID int64
		var tag string
		if err := rows.Scan(&noteID, &tag); err != nil {
			return nil, err
		}
		result[noteID] = append(result[noteID], tag)
	}
	return result, rows.Err()
}

func replaceNoteTags(ctx context.Context, tx *sql.Tx, noteID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id = ?", noteID); err != nil {
		return fmt.Errorf("clear note tags: %w", err)
	}
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, "INSERT INTO note_tags (note_id, tag, position) VALUES (?, ?, ?)", noteID, tag, i); err != nil {
			return fmt.Errorf("insert note tag: %w", err)
		}
	}
	return nil
}

func normalizeNoteInput(input NoteInput) NoteInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Tags = normalizeTags(input.Tags)
	input.Emotion = strings.ToLower(strings.TrimSpace(input.Emotion))
	return input
}

// prepareNoteInput fills emotion and intensity from the classifier when the
// caller left the emotion blank.
func (s *Store) prepareNoteInput(input NoteInput) NoteInput {
	if input.Emotion == "" && s.Classifier != nil {
		analysis := s.Classifier.ClassifyEmotion(input.Title + "\n" + input.Body)
		input.Emotion = analysis.Emotion
		if input.Intensity == nil {
			intensity := analysis.Intensity
			input.Intensity = &intensity
		}
	}
	if input.Intensity == nil {
		zero := 0.0
		input.Intensity = &zero
	}
	return input
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
