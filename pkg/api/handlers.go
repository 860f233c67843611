package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/favorites"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/rubiojr/cinegrid/pkg/search"
	"github.com/rubiojr/cinegrid/pkg/shared"
	"github.com/rubiojr/cinegrid/pkg/tmdb"
	"github.com/rubiojr/cinegrid/pkg/version"
)

// Upper bound for JSON request bodies.
const maxBodyBytes = 64 << 10

func (s *Server) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	s.serveListing(w, r, params)
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}

	// API requires a query parameter
	if !params.IsSearch() {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}
	s.serveListing(w, r, params)
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, params search.Params) {
	var items []catalog.Item
	var err error
	if params.IsSearch() {
		items, err = s.svc.Catalog.Search(r.Context(), params.Query)
	} else {
		items, err = s.svc.Catalog.Browse(r.Context(), params.Filter, params.Genre, params.Page)
	}
	if err != nil {
		s.logger.Warnf("catalog request failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "Upstream error", shared.UpstreamMessage(err))
		return
	}

	favs := s.favoriteKeys(r)
	response := CatalogResponse{
		Query:   params.Query,
		Type:    string(params.Filter),
		Genre:   params.Genre,
		Page:    params.Page,
		Items:   s.itemResponses(items, params.Layout(), favs),
		Count:   len(items),
		HasMore: !params.IsSearch() && len(items) > 0,
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) favoriteKeys(r *http.Request) map[catalog.Key]bool {
	user := s.optionalUser(r)
	if user == nil {
		return nil
	}
	keys, err := s.svc.Favorites.Keys(r.Context(), user.ID)
	if err != nil {
		s.logger.Warnf("loading favorites for %s: %v", user.ID, err)
		return nil
	}
	return keys
}

func (s *Server) itemResponse(it catalog.Item, role layout.Role, favs map[catalog.Key]bool) ItemResponse {
	return ItemResponse{
		Item:        it,
		Key:         it.Key().String(),
		PosterURL:   s.svc.Images.PosterURL(it),
		BackdropURL: s.svc.Images.BackdropURL(it),
		Year:        it.Year(),
		Role:        role.String(),
		Favorite:    favs[it.Key()],
	}
}

func (s *Server) itemResponses(items []catalog.Item, ctx layout.Context, favs map[catalog.Key]bool) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, slot := range layout.Assign(len(items), ctx) {
		out = append(out, s.itemResponse(items[slot.Index], slot.Role, favs))
	}
	return out
}

func (s *Server) HandleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.svc.Titles.Genres(r.Context())
	if err != nil {
		s.logger.Warnf("genres request failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "Upstream error", shared.UpstreamMessage(err))
		return
	}
	s.writeJSON(w, http.StatusOK, GenresResponse{Genres: genres, Count: len(genres)})
}

func titleFromPath(r *http.Request) (catalog.Kind, int, error) {
	kind, err := catalog.ParseKind(r.PathValue("kind"))
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("invalid title id %q", r.PathValue("id"))
	}
	return kind, id, nil
}

func (s *Server) HandleTrailer(w http.ResponseWriter, r *http.Request) {
	kind, id, err := titleFromPath(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid path", err.Error())
		return
	}

	key, err := s.svc.Titles.Trailer(r.Context(), kind, id)
	if err != nil && !tmdb.IsNotFound(err) {
		s.logger.Warnf("trailer lookup for %s %d failed: %v", kind, id, err)
		s.writeError(w, http.StatusBadGateway, "Upstream error", shared.UpstreamMessage(err))
		return
	}
	if key == "" {
		s.writeError(w, http.StatusNotFound, "Trailer not found", fmt.Sprintf("No trailer available for %s %d", kind, id))
		return
	}
	s.writeJSON(w, http.StatusOK, TrailerResponse{Key: key, URL: tmdb.YouTubeURL(key)})
}

func (s *Server) HandleProvider(w http.ResponseWriter, r *http.Request) {
	kind, id, err := titleFromPath(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid path", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ProviderResponse{
		Kind:     kind,
		ID:       id,
		Region:   s.svc.Providers.Region(),
		Platform: s.svc.Providers.Provider(r.Context(), kind, id),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (s *Server) writeSession(w http.ResponseWriter, status int, sess *auth.Session) {
	shared.SetSessionCookie(w, sess, s.svc.SecureCookies)
	s.writeJSON(w, status, SessionResponse{
		Token:     sess.Token,
		User:      sess.User,
		Initials:  auth.Initials(&sess.User),
		ExpiresAt: sess.ExpiresAt,
	})
}

func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	status := shared.AuthStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorf("auth request failed: %v", err)
	}
	s.writeError(w, status, http.StatusText(status), shared.AuthMessage(err))
}

func (s *Server) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateCredentials(&req, auth.ErrWeakPassword); err != nil {
		s.writeAuthError(w, err)
		return
	}
	sess, err := s.svc.Auth.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

func (s *Server) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateCredentials(&req, auth.ErrInvalidCredentials); err != nil {
		s.writeAuthError(w, err)
		return
	}
	sess, err := s.svc.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Auth.SignOut(r.Context(), shared.SessionToken(r)); err != nil {
		s.writeAuthError(w, err)
		return
	}
	shared.ClearSessionCookie(w, s.svc.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, MeResponse{User: *user, Initials: auth.Initials(user)})
}

func (s *Server) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	favs, err := s.svc.Favorites.List(r.Context(), user.ID)
	if err != nil {
		s.logger.Errorf("listing favorites: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to list favorites", err.Error())
		return
	}

	out := make([]FavoriteResponse, len(favs))
	for i, f := range favs {
		out[i] = FavoriteResponse{
			ItemResponse: s.itemResponse(f.Item, layout.Standard, map[catalog.Key]bool{f.Item.Key(): true}),
			CreatedAt:    f.CreatedAt,
		}
	}
	s.writeJSON(w, http.StatusOK, ListFavoritesResponse{Favorites: out, Count: len(out)})
}

func (s *Server) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	var item catalog.Item
	if err := decodeBody(w, r, &item); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := s.svc.Favorites.Add(r.Context(), user.ID, item); err != nil {
		s.writeFavoriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, FavoriteStateResponse{Key: item.Key().String(), Favorite: true})
}

func (s *Server) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	key, err := catalog.ParseKey(r.URL.Query().Get("key"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid key", err.Error())
		return
	}
	if err := s.svc.Favorites.Remove(r.Context(), user.ID, key); err != nil {
		s.writeFavoriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, FavoriteStateResponse{Key: key.String(), Favorite: false})
}

func (s *Server) writeFavoriteError(w http.ResponseWriter, err error) {
	if errors.Is(err, favorites.ErrInvalidItem) {
		s.writeError(w, http.StatusBadRequest, "Invalid item", err.Error())
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Errorf("favorite update failed: %v", err)
	s.writeError(w, http.StatusInternalServerError, "Failed to update favorites", err.Error())
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
