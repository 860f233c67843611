package cmd

import (
	"fmt"

	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/browse"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/config"
	"github.com/rubiojr/cinegrid/pkg/enrich"
	"github.com/rubiojr/cinegrid/pkg/favorites"
	"github.com/rubiojr/cinegrid/pkg/log"
	"github.com/rubiojr/cinegrid/pkg/realtime"
	"github.com/rubiojr/cinegrid/pkg/render"
	"github.com/rubiojr/cinegrid/pkg/search"
	"github.com/rubiojr/cinegrid/pkg/storage"
	"github.com/rubiojr/cinegrid/pkg/tmdb"
)

// hubBuffer is the per-subscriber event buffer of the realtime hub.
const hubBuffer = 32

// app wires the services shared by the commands. The upstream half
// (client, enricher, search, source, render) is nil until connect is
// called.
type app struct {
	cfg *config.Config

	store     *storage.Store
	hub       *realtime.Hub
	auth      *auth.Service
	favorites *favorites.Service

	client   *tmdb.Client
	enricher *enrich.Enricher
	search   *search.Aggregator
	source   *browse.Source
	render   *render.Service
}

// openApp loads the configuration and opens the local database.
func openApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	store, err := storage.OpenDir(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	hub := realtime.NewHub(hubBuffer)
	return &app{
		cfg:       cfg,
		store:     store,
		hub:       hub,
		auth:      auth.NewService(store, hub, auth.WithSessionTTL(cfg.Web.SessionTTL.Duration)),
		favorites: favorites.NewService(store, hub),
	}, nil
}

// connect builds the upstream client and everything that depends on it.
func (a *app) connect() error {
	if err := a.cfg.RequireToken(); err != nil {
		return err
	}

	client, err := tmdb.New(tmdbConfig(a.cfg))
	if err != nil {
		return fmt.Errorf("creating tmdb client: %w", err)
	}
	a.client = client
	a.enricher = enrich.New(client, enrichConfig(a.cfg))

	var opts []search.Option
	var labels browse.Enricher
	if a.cfg.Enrich.IsEnabled() {
		opts = append(opts, search.WithEnricher(a.enricher))
		labels = a.enricher
	} else {
		log.ForService("app").Infof("provider enrichment disabled")
	}
	a.search = search.NewAggregator(client, opts...)
	a.source = browse.NewSource(client, a.search, labels)
	a.render = render.NewService(nil, images(a.cfg))
	return nil
}

// reconfigure applies a reloaded configuration to the running services.
// Storage location and the enrichment switch need a restart.
func (a *app) reconfigure(cfg *config.Config) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}
	if a.client != nil {
		if err := a.client.Configure(tmdbConfig(cfg)); err != nil {
			return err
		}
	}
	if a.enricher != nil {
		a.enricher.Configure(enrichConfig(cfg))
	}
	a.cfg = cfg
	return nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func tmdbConfig(cfg *config.Config) tmdb.Config {
	return tmdb.Config{
		AccessToken:       cfg.TMDB.AccessToken,
		BaseURL:           cfg.TMDB.BaseURL,
		Language:          cfg.TMDB.Language,
		Timeout:           cfg.TMDB.Timeout.Duration,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
	}
}

func enrichConfig(cfg *config.Config) enrich.Config {
	return enrich.Config{
		Region:     cfg.TMDB.Region,
		BatchSize:  cfg.Enrich.BatchSize,
		BatchPause: cfg.Enrich.BatchPause.Duration,
	}
}

func images(cfg *config.Config) catalog.Images {
	return catalog.Images{
		PosterBase:   cfg.TMDB.ImageBaseURL,
		BackdropBase: cfg.TMDB.BackdropBaseURL,
	}
}
