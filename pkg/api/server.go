package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/favorites"
	"github.com/rubiojr/cinegrid/pkg/log"
	"github.com/rubiojr/cinegrid/pkg/shared"
)

// Catalog lists and searches titles. *browse.Source implements it.
type Catalog interface {
	Browse(ctx context.Context, filter catalog.MediaFilter, genre, page int) ([]catalog.Item, error)
	Search(ctx context.Context, query string) ([]catalog.Item, error)
}

// Titles answers per-title and reference lookups. *tmdb.Client implements
// it.
type Titles interface {
	Genres(ctx context.Context) ([]catalog.Genre, error)
	Trailer(ctx context.Context, kind catalog.Kind, id int) (string, error)
}

// Providers resolves the provider label of one title. *enrich.Enricher
// implements it.
type Providers interface {
	Provider(ctx context.Context, kind catalog.Kind, id int) string
	Region() string
}

// Services are the dependencies of the API server.
type Services struct {
	Catalog   Catalog
	Titles    Titles
	Providers Providers
	Auth      *auth.Service
	Favorites *favorites.Service

	// Images builds artwork URLs. Zero means catalog.DefaultImages.
	Images catalog.Images

	// SecureCookies marks session cookies Secure.
	SecureCookies bool
}

type Server struct {
	svc      Services
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewServer(svc Services) *Server {
	if svc.Images == (catalog.Images{}) {
		svc.Images = catalog.DefaultImages
	}
	return &Server{
		svc:    svc,
		logger: log.ForService("api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The session cookie is SameSite=Lax, bearer clients send no Origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

// currentUser resolves the session of the request, writing a 401 when
// there is none. An expired session also clears the cookie.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, err := s.svc.Auth.User(r.Context(), shared.SessionToken(r))
	if err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			shared.ClearSessionCookie(w, s.svc.SecureCookies)
		}
		status := shared.AuthStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Errorf("resolving session: %v", err)
		}
		s.writeError(w, status, "Unauthorized", shared.AuthMessage(err))
		return nil, false
	}
	return user, true
}

// optionalUser returns the signed-in user or nil.
func (s *Server) optionalUser(r *http.Request) *auth.User {
	token := shared.SessionToken(r)
	if token == "" {
		return nil
	}
	user, err := s.svc.Auth.User(r.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
