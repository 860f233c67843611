package cmd

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/a-h/templ"
	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rubiojr/cinegrid/cmd/web/components"
	"github.com/rubiojr/cinegrid/cmd/web/components/types"
	"github.com/rubiojr/cinegrid/pkg/api"
	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/config"
	"github.com/rubiojr/cinegrid/pkg/favorites"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/rubiojr/cinegrid/pkg/log"
	"github.com/rubiojr/cinegrid/pkg/search"
	"github.com/rubiojr/cinegrid/pkg/shared"
	"github.com/rubiojr/cinegrid/pkg/tmdb"
	"github.com/rubiojr/cinegrid/pkg/version"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

//go:embed web/static/*
var staticFS embed.FS

// WebCommand creates the web command with both API and UI
func WebCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start web server with both API endpoints and HTML interface",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (default from config)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (default from config)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload upstream settings when the config file changes",
				Value: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return startWebServer(ctx, c.String("config"), c.String("host"), c.Int("port"), c.Bool("watch"))
		},
	}
}

// WebServer serves the HTML interface. JSON endpoints are delegated to
// the api package.
type WebServer struct {
	app       *app
	apiServer *api.Server
	secure    bool
	logger    *log.Logger

	genresMu sync.Mutex
	genres   []catalog.Genre
}

func newWebServer(a *app) *WebServer {
	return &WebServer{
		app: a,
		apiServer: api.NewServer(api.Services{
			Catalog:       a.source,
			Titles:        a.client,
			Providers:     a.enricher,
			Auth:          a.auth,
			Favorites:     a.favorites,
			Images:        a.render.Images(),
			SecureCookies: a.cfg.Web.SecureCookies,
		}),
		secure: a.cfg.Web.SecureCookies,
		logger: log.ForService("web"),
	}
}

// Handler returns the full UI and API handler.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	s.apiServer.RegisterRoutes(mux)

	// Web UI routes
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /grid", s.handleGrid)
	mux.HandleFunc("GET /title/{kind}/{id}", s.handleTitle)
	mux.HandleFunc("GET /favorites", s.handleFavorites)
	mux.HandleFunc("POST /favorites/toggle", s.handleToggle)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /signup", s.handleSignUp)
	mux.HandleFunc("POST /logout", s.handleLogout)

	// Static assets
	mux.HandleFunc("GET /static/", s.handleStatic)

	return api.LogMiddleware(api.CorsMiddleware(compress(mux)))
}

// compress gzips responses except WebSocket upgrades, which need the raw
// connection.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/ws") {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// startWebServer starts the web server with both API and UI
func startWebServer(ctx context.Context, configPath, host string, port int, watch bool) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Printf("Warning: failed to close storage: %v\n", err)
		}
	}()
	if err := a.connect(); err != nil {
		return err
	}

	if host != "" {
		a.cfg.Web.Host = host
	}
	if port != 0 {
		a.cfg.Web.Port = port
	}
	addr := a.cfg.Web.Addr()

	webServer := newWebServer(a)
	server := &http.Server{
		Addr:              addr,
		Handler:           webServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := log.ForService("web")
	watchLog := logger.Named("config")
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting web server on http://%s", addr)
		logger.Infof("Available endpoints:")
		logger.Infof("  Web UI: / /grid /title/{kind}/{id} /favorites /login")
		logger.Infof("  API: /api/catalog /api/search /api/genres /api/titles/{kind}/{id}/trailer|provider")
		logger.Infof("       /api/auth/signup|signin|signout|me /api/favorites /api/favorites/ws /health")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	// Nil channels never fire when watching is off or fails.
	var watcher *fsnotify.Watcher
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watch {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			watchLog.Warnf("failed to create config file watcher: %v", err)
		} else {
			defer func() {
				if err := watcher.Close(); err != nil {
					watchLog.Warnf("failed to close config file watcher: %v", err)
				}
			}()
			if err := watcher.Add(configPath); err != nil {
				watchLog.Warnf("failed to watch config file %s: %v", configPath, err)
			} else {
				watchLog.Infof("Watching config file for changes: %s", configPath)
			}
			events, watchErrs = watcher.Events, watcher.Errors
		}
	}

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				watchLog.Infof("Received SIGHUP, reloading configuration...")
				webServer.reload(configPath)
				continue
			}
			return shutdown(server)
		case err := <-errCh:
			return fmt.Errorf("web server: %w", err)
		case <-ctx.Done():
			return shutdown(server)
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !configChanged(event) {
				continue
			}
			watchLog.Infof("Config file changed: %s (event: %s), reloading configuration...", event.Name, event.Op)
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				// Editors replace the file on save.
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					watchLog.Infof("Config file was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(configPath); err != nil {
					watchLog.Warnf("failed to re-add config file to watcher: %v", err)
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}
			webServer.reload(configPath)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			watchLog.Warnf("Config file watcher error: %v", err)
		}
	}
}

func configChanged(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

func shutdown(server *http.Server) error {
	log.ForService("web").Infof("Shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// reload re-reads the config file and applies the upstream settings. A
// broken file keeps the running settings.
func (s *WebServer) reload(configPath string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		s.logger.Errorf("Failed to reload configuration: %v", err)
		return
	}
	if err := s.app.reconfigure(cfg); err != nil {
		s.logger.Errorf("Failed to apply configuration: %v", err)
		return
	}
	// Genre names follow the response language.
	s.genresMu.Lock()
	s.genres = nil
	s.genresMu.Unlock()
	s.logger.Infof("Configuration reloaded successfully")
}

// Web UI Handlers

func (s *WebServer) basePage(r *http.Request, title string) types.PageData {
	user := s.currentUser(r)
	data := types.PageData{
		Title:   title,
		Version: version.APIVersion(),
		User:    user,
		Filter:  catalog.FilterAll,
		Filters: catalog.MediaFilters(),
	}
	if user != nil {
		data.Initials = auth.Initials(user)
	}
	return data
}

// currentUser returns the signed-in user or nil.
func (s *WebServer) currentUser(r *http.Request) *auth.User {
	token := shared.SessionToken(r)
	if token == "" {
		return nil
	}
	user, err := s.app.auth.User(r.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) && !errors.Is(err, auth.ErrSessionExpired) {
			s.logger.Errorf("resolving session: %v", err)
		}
		return nil
	}
	return user
}

// genreList returns the merged genre list, fetching it once. Failures are
// logged and leave the genre picker hidden.
func (s *WebServer) genreList(ctx context.Context) []catalog.Genre {
	s.genresMu.Lock()
	defer s.genresMu.Unlock()
	if s.genres != nil {
		return s.genres
	}
	genres, err := s.app.client.Genres(ctx)
	if err != nil {
		s.logger.Warnf("loading genres: %v", err)
		return nil
	}
	s.genres = genres
	return genres
}

func (s *WebServer) favoriteKeys(ctx context.Context, user *auth.User) map[catalog.Key]bool {
	if user == nil {
		return nil
	}
	keys, err := s.app.favorites.Keys(ctx, user.ID)
	if err != nil {
		s.logger.Warnf("loading favorite keys: %v", err)
		return nil
	}
	return keys
}

// listing fills the grid of data for params. Upstream failures become an
// inline error with no cards.
func (s *WebServer) listing(ctx context.Context, data *types.PageData, params search.Params) error {
	var items []catalog.Item
	var err error
	if params.IsSearch() {
		items, err = s.app.source.Search(ctx, params.Query)
	} else {
		items, err = s.app.source.Browse(ctx, params.Filter, params.Genre, params.Page)
	}
	if err != nil {
		s.logger.Warnf("catalog request failed: %v", err)
		data.Error = shared.UpstreamMessage(err)
		return err
	}

	cards := s.app.render.Cards(items, params.Layout(), s.favoriteKeys(ctx, data.User), data.User != nil)
	data.Cards = s.app.render.RenderAll(cards)
	data.Count = len(items)
	data.NextURL = components.NextURL(params, len(items))
	return nil
}

// handleHome serves the grid: trending, a filtered listing or search
// results depending on the query string.
func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	data := s.basePage(r, "CineGrid")

	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		data.Error = "Invalid parameters: " + err.Error()
		s.render(w, r, http.StatusBadRequest, components.Index(data))
		return
	}

	data.Query = params.Query
	data.Filter = params.Filter
	data.Genre = params.Genre
	data.Page = params.Page
	data.Search = params.IsSearch()
	data.Genres = s.genreList(r.Context())
	data.Heading = components.Heading(params, data.Genres)
	if data.Search {
		data.Title = fmt.Sprintf("%s - CineGrid", params.Query)
	}

	_ = s.listing(r.Context(), &data, params)
	s.render(w, r, http.StatusOK, components.Index(data))
}

// handleGrid serves the next page of cards for infinite scroll.
func (s *WebServer) handleGrid(w http.ResponseWriter, r *http.Request) {
	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data := types.PageData{User: s.currentUser(r), Page: params.Page}
	if err := s.listing(r.Context(), &data, params); err != nil {
		http.Error(w, data.Error, http.StatusBadGateway)
		return
	}
	s.render(w, r, http.StatusOK, components.Grid(data))
}

// handleTitle shows one title with its provider, genres and trailer.
func (s *WebServer) handleTitle(w http.ResponseWriter, r *http.Request) {
	data := s.basePage(r, "CineGrid")

	kind, err := catalog.ParseKind(r.PathValue("kind"))
	id, idErr := strconv.Atoi(r.PathValue("id"))
	if err != nil || idErr != nil || id <= 0 {
		data.Error = "Title not found."
		s.render(w, r, http.StatusNotFound, components.Title(data))
		return
	}

	ctx := r.Context()
	item, err := s.app.client.Details(ctx, kind, id)
	if err != nil {
		status := http.StatusBadGateway
		data.Error = shared.UpstreamMessage(err)
		if tmdb.IsNotFound(err) {
			status = http.StatusNotFound
			data.Error = "Title not found."
		} else {
			s.logger.Warnf("loading %s %d: %v", kind, id, err)
		}
		s.render(w, r, status, components.Title(data))
		return
	}

	var trailer string
	var g errgroup.Group
	g.Go(func() error {
		item.Platform = s.app.enricher.Provider(ctx, kind, id)
		return nil
	})
	g.Go(func() error {
		key, err := s.app.client.Trailer(ctx, kind, id)
		if err != nil {
			s.logger.Debugf("trailer lookup for %s %d failed: %v", kind, id, err)
			return nil
		}
		trailer = key
		return nil
	})
	_ = g.Wait()

	images := s.app.render.Images()
	detail := &types.TitleDetail{
		Item:        item,
		Key:         item.Key().String(),
		BackdropURL: images.BackdropURL(item),
		PosterURL:   images.PosterURL(item),
		Genres:      components.GenreNames(s.genreList(ctx), item.GenreIDs),
	}
	if trailer != "" {
		detail.TrailerURL = tmdb.YouTubeURL(trailer)
	}
	if data.User != nil {
		fav, err := s.app.favorites.IsFavorite(ctx, data.User.ID, item.Key())
		if err != nil {
			s.logger.Warnf("checking favorite: %v", err)
		}
		detail.Favorite = fav
	}

	data.Title = fmt.Sprintf("%s - CineGrid", item.Title)
	data.Detail = detail
	s.render(w, r, http.StatusOK, components.Title(data))
}

// handleFavorites lists the saved titles of the signed-in user.
func (s *WebServer) handleFavorites(w http.ResponseWriter, r *http.Request) {
	data := s.basePage(r, "Favorites - CineGrid")
	if data.User == nil {
		http.Redirect(w, r, "/login?next=/favorites", http.StatusSeeOther)
		return
	}

	s.renderFavorites(w, r, data, http.StatusOK)
}

// renderFavorites lists the saved titles of data.User under any notice
// already set in data.Error.
func (s *WebServer) renderFavorites(w http.ResponseWriter, r *http.Request, data types.PageData, status int) {
	saved, err := s.app.favorites.List(r.Context(), data.User.ID)
	if err != nil {
		s.logger.Errorf("listing favorites: %v", err)
		data.Error = "Could not load your favorites."
		s.render(w, r, http.StatusInternalServerError, components.Favorites(data))
		return
	}

	items := make([]catalog.Item, len(saved))
	favs := make(map[catalog.Key]bool, len(saved))
	for i, f := range saved {
		items[i] = f.Item
		favs[f.Item.Key()] = true
	}
	cards := s.app.render.Cards(items, layout.Context{}, favs, true)
	data.Cards = s.app.render.RenderAll(cards)
	data.Count = len(items)
	s.render(w, r, status, components.Favorites(data))
}

// handleToggle flips the saved state of the posted item. Script clients
// ask for JSON, plain form posts are redirected back.
func (s *WebServer) handleToggle(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)
	asJSON := wantsJSON(r)
	if user == nil {
		if asJSON {
			writeJSONError(w, http.StatusUnauthorized, auth.ErrNoSession.Error())
			return
		}
		http.Redirect(w, r, "/login?next="+safeNext(refererPath(r)), http.StatusSeeOther)
		return
	}

	fail := func(status int, message string) {
		if asJSON {
			writeJSONError(w, status, message)
			return
		}
		data := s.basePage(r, "Favorites - CineGrid")
		data.Error = message
		s.renderFavorites(w, r, data, status)
	}

	var item catalog.Item
	if err := json.Unmarshal([]byte(r.PostFormValue("item")), &item); err != nil {
		fail(http.StatusBadRequest, "invalid item")
		return
	}
	on, err := s.app.favorites.Toggle(r.Context(), user.ID, item)
	if err != nil {
		if errors.Is(err, favorites.ErrInvalidItem) {
			fail(http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Errorf("toggling favorite: %v", err)
		fail(http.StatusInternalServerError, "Could not update your favorites.")
		return
	}

	if asJSON {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(api.FavoriteStateResponse{Key: item.Key().String(), Favorite: on}); err != nil {
			s.logger.Errorf("Error encoding JSON response: %v", err)
		}
		return
	}
	http.Redirect(w, r, safeNext(refererPath(r)), http.StatusSeeOther)
}

func (s *WebServer) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := s.basePage(r, "Sign in - CineGrid")
	data.Next = safeNext(r.URL.Query().Get("next"))
	if data.User != nil {
		http.Redirect(w, r, data.Next, http.StatusSeeOther)
		return
	}
	if r.URL.Query().Get("signed_out") != "" {
		data.Success = "You have been signed out."
	}
	s.render(w, r, http.StatusOK, components.Login(data))
}

func (s *WebServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	sess, err := s.app.auth.SignIn(r.Context(), email, r.PostFormValue("password"))
	s.finishAuth(w, r, email, sess, err)
}

func (s *WebServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	sess, err := s.app.auth.SignUp(r.Context(), email, r.PostFormValue("password"), r.PostFormValue("full_name"))
	s.finishAuth(w, r, email, sess, err)
}

// finishAuth sets the session cookie and redirects, or shows the login
// page again with the failure inline.
func (s *WebServer) finishAuth(w http.ResponseWriter, r *http.Request, email string, sess *auth.Session, err error) {
	next := safeNext(r.PostFormValue("next"))
	if err != nil {
		status := shared.AuthStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Errorf("authentication failed: %v", err)
		}
		data := s.basePage(r, "Sign in - CineGrid")
		data.Error = shared.AuthMessage(err)
		data.Email = email
		data.Next = next
		s.render(w, r, status, components.Login(data))
		return
	}
	shared.SetSessionCookie(w, sess, s.secure)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *WebServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.app.auth.SignOut(r.Context(), shared.SessionToken(r)); err != nil {
		s.logger.Errorf("signing out: %v", err)
	}
	shared.ClearSessionCookie(w, s.secure)
	http.Redirect(w, r, "/login?signed_out=1", http.StatusSeeOther)
}

// handleStatic serves static assets from embedded files
func (s *WebServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// Remove /static/ prefix and add web/static/ prefix for embedded filesystem
	filePath := "web/static/" + strings.TrimPrefix(path, "/static/")

	content, err := staticFS.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".svg"):
		w.Header().Set("Content-Type", "image/svg+xml")
	case strings.HasSuffix(path, ".png"):
		w.Header().Set("Content-Type", "image/png")
	}

	// Set cache headers for static assets
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := w.Write(content); err != nil {
		s.logger.Warnf("Error writing static content: %v", err)
	}
}

func (s *WebServer) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		s.logger.Errorf("Template error: %v", err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: http.StatusText(status), Message: message})
}

// refererPath returns the path and query of the Referer header.
func refererPath(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.RequestURI()
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
