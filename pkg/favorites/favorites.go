// Package favorites keeps per-user lists of saved titles and announces
// changes on the realtime hub.
package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/log"
	"github.com/rubiojr/cinegrid/pkg/realtime"
	"github.com/rubiojr/cinegrid/pkg/storage"
)

var ErrInvalidItem = errors.New("favorite needs a movie or tv title with an id")

// Store is the persistence the service needs. *storage.Store implements it.
type Store interface {
	AddFavorite(ctx context.Context, userID string, item catalog.Item, now time.Time) (bool, error)
	RemoveFavorite(ctx context.Context, userID string, key catalog.Key) (bool, error)
	IsFavorite(ctx context.Context, userID string, key catalog.Key) (bool, error)
	FavoriteKeys(ctx context.Context, userID string) ([]catalog.Key, error)
	ListFavorites(ctx context.Context, userID string) ([]storage.Favorite, error)
}

type Service struct {
	store  Store
	hub    *realtime.Hub
	logger *log.Logger
}

// NewService creates a favorites service. A private hub is used when hub
// is nil.
func NewService(store Store, hub *realtime.Hub) *Service {
	if hub == nil {
		hub = realtime.NewHub(0)
	}
	return &Service{store: store, hub: hub, logger: log.ForService("favorites")}
}

// Add saves item for the user. Adding a title that is already saved,
// including from a concurrent request, succeeds without a second row.
func (s *Service) Add(ctx context.Context, userID string, item catalog.Item) error {
	if !item.Kind.Valid() || item.ID <= 0 {
		return ErrInvalidItem
	}
	created, err := s.store.AddFavorite(ctx, userID, item, time.Now())
	if err != nil {
		return err
	}
	if created {
		it := item
		s.hub.Publish(realtime.Event{Type: realtime.FavoriteAdded, UserID: userID, Key: item.Key().String(), Item: &it})
	}
	return nil
}

// Remove deletes a saved title. Removing a title that is not saved is not
// an error.
func (s *Service) Remove(ctx context.Context, userID string, key catalog.Key) error {
	removed, err := s.store.RemoveFavorite(ctx, userID, key)
	if err != nil {
		return err
	}
	if removed {
		s.hub.Publish(realtime.Event{Type: realtime.FavoriteRemoved, UserID: userID, Key: key.String()})
	}
	return nil
}

// Toggle flips the saved state of item and returns the new state.
func (s *Service) Toggle(ctx context.Context, userID string, item catalog.Item) (bool, error) {
	fav, err := s.store.IsFavorite(ctx, userID, item.Key())
	if err != nil {
		return false, err
	}
	if fav {
		return false, s.Remove(ctx, userID, item.Key())
	}
	return true, s.Add(ctx, userID, item)
}

func (s *Service) IsFavorite(ctx context.Context, userID string, key catalog.Key) (bool, error) {
	return s.store.IsFavorite(ctx, userID, key)
}

// Keys returns the set of saved title keys.
func (s *Service) Keys(ctx context.Context, userID string) (map[catalog.Key]bool, error) {
	keys, err := s.store.FavoriteKeys(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[catalog.Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}

// List returns the saved titles, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]storage.Favorite, error) {
	return s.store.ListFavorites(ctx, userID)
}

// Subscribe delivers the user's favorite changes until ctx ends or the
// subscription is closed.
func (s *Service) Subscribe(ctx context.Context, userID string) *realtime.Subscription {
	return s.hub.Subscribe(ctx, func(e realtime.Event) bool {
		if e.UserID != userID {
			return false
		}
		return e.Type == realtime.FavoriteAdded || e.Type == realtime.FavoriteRemoved
	})
}
