package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

// Favorite is a saved title with the item as it was when saved.
type Favorite struct {
	Item      catalog.Item
	CreatedAt time.Time
}

// AddFavorite saves item for the user. Saving a title twice is not an
// error: the uniqueness violation raised by a concurrent or repeated insert
// counts as success. created reports whether this call inserted the row.
func (s *Store) AddFavorite(ctx context.Context, userID string, item catalog.Item, now time.Time) (created bool, err error) {
	data, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("encoding item: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, kind, item_id, item, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, string(item.Kind), item.ID, string(data), formatTime(now))
	if isUniqueViolation(err) {
		s.logger.Debugf("favorite %s already saved for %s", item.Key(), userID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting favorite: %w", err)
	}
	return true, nil
}

// RemoveFavorite deletes a saved title and reports whether it existed.
func (s *Store) RemoveFavorite(ctx context.Context, userID string, key catalog.Key) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = ? AND kind = ? AND item_id = ?
	`, userID, string(key.Kind), key.ID)
	if err != nil {
		return false, fmt.Errorf("deleting favorite: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) IsFavorite(ctx context.Context, userID string, key catalog.Key) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE user_id = ? AND kind = ? AND item_id = ?
	`, userID, string(key.Kind), key.ID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying favorite: %w", err)
	}
	return n > 0, nil
}

// FavoriteKeys returns the keys of every saved title, newest first.
func (s *Store) FavoriteKeys(ctx context.Context, userID string) ([]catalog.Key, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, item_id FROM favorites WHERE user_id = ? ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorite keys: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var keys []catalog.Key
	for rows.Next() {
		var kind string
		var id int
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, fmt.Errorf("scanning favorite key: %w", err)
		}
		keys = append(keys, catalog.Key{Kind: catalog.Kind(kind), ID: id})
	}
	return keys, rows.Err()
}

// ListFavorites returns the saved titles, newest first.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item, created_at FROM favorites WHERE user_id = ? ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var favorites []Favorite
	for rows.Next() {
		var data, created string
		if err := rows.Scan(&data, &created); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}

		var f Favorite
		if err := json.Unmarshal([]byte(data), &f.Item); err != nil {
			s.logger.Warnf("skipping unreadable favorite for %s: %v", userID, err)
			continue
		}
		if f.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}
