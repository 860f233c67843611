package api

import (
	"time"

	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/realtime"
)

// ItemResponse is a title as rendered in a grid.
type ItemResponse struct {
	catalog.Item
	Key         string `json:"key"`
	PosterURL   string `json:"poster_url"`
	BackdropURL string `json:"backdrop_url"`
	Year        string `json:"year"`
	Role        string `json:"role"`
	Favorite    bool   `json:"favorite"`
}

type CatalogResponse struct {
	Query   string         `json:"query,omitempty"`
	Type    string         `json:"type"`
	Genre   int            `json:"genre,omitempty"`
	Page    int            `json:"page"`
	Items   []ItemResponse `json:"items"`
	Count   int            `json:"count"`
	HasMore bool           `json:"has_more"`
}

type GenresResponse struct {
	Genres []catalog.Genre `json:"genres"`
	Count  int             `json:"count"`
}

type TrailerResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ProviderResponse struct {
	Kind     catalog.Kind `json:"media_type"`
	ID       int          `json:"id"`
	Region   string       `json:"region"`
	Platform string       `json:"platform"`
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	User      auth.User `json:"user"`
	Initials  string    `json:"initials"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MeResponse struct {
	User     auth.User `json:"user"`
	Initials string    `json:"initials"`
}

type FavoriteResponse struct {
	ItemResponse
	CreatedAt time.Time `json:"created_at"`
}

type ListFavoritesResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
	Count     int                `json:"count"`
}

type FavoriteStateResponse struct {
	Key      string `json:"key"`
	Favorite bool   `json:"favorite"`
}

// WSMessage is a frame on the favorites socket. The first frame has type
// "init" and carries the current keys; later frames are change events.
type WSMessage struct {
	Type  string          `json:"type"`
	Keys  []string        `json:"keys,omitempty"`
	Event *realtime.Event `json:"event,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
