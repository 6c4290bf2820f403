package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Joseda-hg/mindtask/internal/model"
)

// SaveView inserts the view when ID is zero and updates it otherwise.
// Query.Now is never persisted.
func (s *Store) SaveView(ctx context.Context, view model.View) (model.View, error) {
	view.Name = strings.TrimSpace(view.Name)
	if view.Name == "" {
		return model.View{}, fmt.Errorf("view name is required")
	}
	if view.Scope != model.ScopeNotes && view.Scope != model.ScopeTasks {
		return model.View{}, fmt.Errorf("unknown view scope %q", view.Scope)
	}

	payload, err := json.Marshal(view.Spec)
	if err != nil {
		return model.View{}, err
	}

	now := formatTime(s.now())
	if view.ID == 0 {
		if _, err := s.DB.ExecContext(ctx,
			`INSERT INTO views (name, scope, spec_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (scope, name) DO UPDATE SET spec_json = excluded.spec_json, updated_at = excluded.updated_at`,
			view.Name, string(view.Scope), string(payload), now, now); err != nil {
			return model.View{}, fmt.Errorf("save view: %w", err)
		}
		return s.GetViewByName(ctx, view.Scope, view.Name)
	}

	res, err := s.DB.ExecContext(ctx,
		"UPDATE views SET name = ?, spec_json = ?, updated_at = ? WHERE id = ?",
		view.Name, string(payload), now, view.ID)
	if err != nil {
		return model.View{}, fmt.Errorf("update view: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.View{}, fmt.Errorf("view %d: %w", view.ID, ErrNotFound)
	}
	return s.getView(ctx, "WHERE id = ?", view.ID)
}

// ListViews returns the views of one scope, or all views for an empty scope.
func (s *Store) ListViews(ctx context.Context, scope model.Scope) ([]model.View, error) {
	where, args := "", []any{}
	if scope != "" {
		where, args = "WHERE scope = ?", []any{string(scope)}
	}
	rows, err := s.DB.QueryContext(ctx, viewSelect+" "+where+" ORDER BY name COLLATE NOCASE, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []model.View{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

func (s *Store) DeleteView(ctx context.Context, viewID int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM views WHERE id = ?", viewID)
	if err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("view %d: %w", viewID, ErrNotFound)
	}
	return nil
}

func (s *Store) GetViewByName(ctx context.Context, scope model.Scope, name string) (model.View, error) {
	return s.getView(ctx, "WHERE scope = ? AND name = ?", string(scope), strings.TrimSpace(name))
}

func (s *Store) getView(ctx context.Context, where string, args ...any) (model.View, error) {
	view, err := scanView(s.DB.QueryRowContext(ctx, viewSelect+" "+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.View{}, fmt.Errorf("view: %w", ErrNotFound)
		}
		return model.View{}, err
	}
	return view, nil
}

const viewSelect = `SELECT id, name, scope, spec_json, created_at, updated_at FROM views`

func scanView(row rowScanner) (model.View, error) {
	var view model.View
	var scope, specJSON, createdAt, updatedAt string
	if err := row.Scan(&view.ID, &view.Name, &scope, &specJSON, &createdAt, &updatedAt); err != nil {
		return model.View{}, err
	}
	view.Scope = model.Scope(scope)

	if err := json.Unmarshal([]byte(specJSON), &view.Spec); err != nil {
		return model.View{}, fmt.Errorf("decode view %d: %w", view.ID, err)
	}

	var err error
	if view.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.View{}, err
	}
	if view.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.View{}, err
	}
	return view, nil
}
