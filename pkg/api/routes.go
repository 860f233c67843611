package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", s.HandleCatalog)
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/genres", s.HandleGenres)
	mux.HandleFunc("GET /api/titles/{kind}/{id}/trailer", s.HandleTrailer)
	mux.HandleFunc("GET /api/titles/{kind}/{id}/provider", s.HandleProvider)

	mux.HandleFunc("POST /api/auth/signup", s.HandleSignUp)
	mux.HandleFunc("POST /api/auth/signin", s.HandleSignIn)
	mux.HandleFunc("POST /api/auth/signout", s.HandleSignOut)
	mux.HandleFunc("GET /api/auth/me", s.HandleMe)

	mux.HandleFunc("GET /api/favorites", s.HandleListFavorites)
	mux.HandleFunc("POST /api/favorites", s.HandleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites", s.HandleRemoveFavorite)
	mux.HandleFunc("GET /api/favorites/ws", s.HandleFavoritesWS)

	mux.HandleFunc("GET /health", s.HandleHealth)
}
