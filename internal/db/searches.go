package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Joseda-hg/mindtask/internal/model"
)

// MaxRecentSearches bounds the recent search list of each scope.
const MaxRecentSearches = 10

// RecordSearch moves query to the front of the scope's recent searches.
// Queries differing only in case share one entry, keeping the latest spelling.
func (s *Store) RecordSearch(ctx context.Context, scope model.Scope, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	key := cases.Fold().String(query)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recent_searches (scope, query_key, query, searched_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (scope, query_key) DO UPDATE SET query = excluded.query, searched_at = excluded.searched_at`,
			string(scope), key, query, formatTime(s.now())); err != nil {
			return fmt.Errorf("record search: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recent_searches WHERE scope = ? AND query_key NOT IN (
				SELECT query_key FROM recent_searches WHERE scope = ? ORDER BY searched_at DESC, rowid DESC LIMIT ?)`,
			string(scope), string(scope), MaxRecentSearches); err != nil {
			return fmt.Errorf("trim searches: %w", err)
		}
		return nil
	})
}

func (s *Store) RecentSearches(ctx context.Context, scope model.Scope) ([]model.RecentSearch, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT query, scope, searched_at FROM recent_searches WHERE scope = ? ORDER BY searched_at DESC, rowid DESC LIMIT ?",
		string(scope), MaxRecentSearches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	searches := []model.RecentSearch{}
	for rows.Next() {
		var search model.RecentSearch
		var scopeValue, searchedAt string
		if err := rows.Scan(&search.Query, &scopeValue, &searchedAt); err != nil {
			return nil, err
		}
		search.Scope = model.Scope(scopeValue)
		if search.SearchedAt, err = parseTime(searchedAt); err != nil {
			return nil, err
		}
		searches = append(searches, search)
	}
	return searches, rows.Err()
}

func (s *Store) ClearRecentSearches(ctx context.Context, scope model.Scope) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM recent_searches WHERE scope = ?", string(scope)); err != nil {
		return fmt.Errorf("clear searches: %w", err)
	}
	return nil
}
