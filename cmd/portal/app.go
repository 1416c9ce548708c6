package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/denisok6893-rgb/realestate-portal/internal/admin"
	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/cache"
	"github.com/denisok6893-rgb/realestate-portal/internal/config"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
	"github.com/denisok6893-rgb/realestate-portal/internal/gallery"
	httpapi "github.com/denisok6893-rgb/realestate-portal/internal/http"
	"github.com/denisok6893-rgb/realestate-portal/internal/listing"
	"github.com/denisok6893-rgb/realestate-portal/internal/session"
	"github.com/denisok6893-rgb/realestate-portal/internal/storage"
)

// app holds everything a command needs. It is built once per process.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	store    *storage.LocalStorage
	api      *apiclient.Client
	sess     *session.Session
	pipeline *listing.Pipeline
}

func newLogger(c config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if c.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func newApp(cfg config.Config, stderr io.Writer) (*app, error) {
	log := newLogger(cfg.Log, stderr)

	store, err := storage.OpenLocalStorage(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	api := apiclient.New(apiclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		APIKey:  cfg.API.Key,
		Logger:  log,
	})
	sess := session.New(store, api, log)
	api.SetCredentials(sess)
	api.OnUnauthorized(sess.Expire)
	state := sess.Restore()
	log.Debug().Str("state", state.String()).Msg("session restored")

	kw, err := listing.LoadLocationKeywords(cfg.Listing.LocationsPath)
	if err != nil {
		log.Warn().Err(err).Msg("use default location keywords")
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		api:      api,
		sess:     sess,
		pipeline: listing.NewPipeline(kw, cfg.Listing.PageSize),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// listingCache connects to redis when configured. A redis that does not answer
// at startup disables caching instead of failing the server.
func (a *app) listingCache(ctx context.Context) (cache.Cache, func()) {
	if a.cfg.Redis.Addr == "" {
		return cache.Nop{}, func() {}
	}
	r := cache.NewRedis(cache.RedisOptions{Addr: a.cfg.Redis.Addr, Password: a.cfg.Redis.Password})
	if err := r.Ping(ctx); err != nil {
		a.log.Warn().Err(err).Str("addr", a.cfg.Redis.Addr).Msg("listing cache disabled")
		_ = r.Close()
		return cache.Nop{}, func() {}
	}
	a.log.Info().Str("addr", a.cfg.Redis.Addr).Dur("ttl", a.cfg.Redis.TTL).Msg("listing cache enabled")
	return r, func() { _ = r.Close() }
}

// invalidateListings drops cached listing pages after an admin write from the
// command line, so a running server stops serving the old data.
func (a *app) invalidateListings(ctx context.Context) {
	if a.cfg.Redis.Addr == "" {
		return
	}
	c, closeCache := a.listingCache(ctx)
	defer closeCache()
	if err := c.Invalidate(ctx, cache.ListingPrefix); err != nil {
		a.log.Warn().Err(err).Msg("invalidate listing cache")
	}
}

func (a *app) server(c cache.Cache) *httpapi.Server {
	return httpapi.NewServer(httpapi.Deps{
		API:      a.api,
		Session:  a.sess,
		Pipeline: a.pipeline,
		Table:    admin.NewTable(a.api, a.log),
		Inbox:    admin.NewInbox(a.api, a.log),
		Prober:   gallery.NewProber(&http.Client{}, 5*time.Second, a.log),
		Cache:    c,
		CacheTTL: a.cfg.Redis.TTL,
		Logger:   a.log,
	})
}

// requireAdmin runs the same guard as the admin pages.
func (a *app) requireAdmin() error {
	if _, err := a.sess.Authorize(domain.RoleAdmin); err != nil {
		return fmt.Errorf("%w (run `portal login` first)", err)
	}
	return nil
}
