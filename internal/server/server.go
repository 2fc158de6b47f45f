// Package server assembles the EffectLab web server: the Gin engine, the
// visitor session store, the console journal and the metrics registry.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vesaa/effectlab/internal/config"
	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/journal"
	"github.com/vesaa/effectlab/internal/logging"
	"github.com/vesaa/effectlab/internal/metrics"
	"github.com/vesaa/effectlab/internal/mistakes"
	"github.com/vesaa/effectlab/internal/procstats"
	"github.com/vesaa/effectlab/internal/quote"
	"github.com/vesaa/effectlab/internal/session"
)

// Server owns every long-lived component of a running lab.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	journal   *journal.Journal
	metrics   *metrics.Metrics
	store     *session.Store
	signer    *session.Signer
	procs     *procstats.Collector
	quotes    *quote.Counting
	templates map[string]*template.Template

	settleTimeout time.Duration
}

// Option customises New.
type Option func(*options)

type options struct {
	quotes quote.Source
}

// WithQuoteSource replaces the HTTP quote client.
func WithQuoteSource(src quote.Source) Option {
	return func(o *options) { o.quotes = src }
}

// New opens the journal, parses the templates and wires the session store.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.quotes == nil {
		o.quotes = quote.NewClient(cfg.QuoteURL, cfg.QuoteTimeout())
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	j, err := journal.Open(cfg.DBDriver, cfg.DBPath, cfg.ConsoleRetention, log.Named("journal"))
	if err != nil {
		return nil, fmt.Errorf("initializing journal: %w", err)
	}

	signer, err := session.NewSigner(cfg.SessionSecret, cfg.SessionTTL())
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	procs, err := procstats.NewCollector(time.Second)
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		journal:   j,
		signer:    signer,
		procs:     procs,
		templates: templates,

		settleTimeout: defaultSettleTimeout,
	}
	s.metrics = metrics.New(
		func() int { return s.store.LiveTimers() },
		func() int { return s.store.Count() },
	)
	s.quotes = &quote.Counting{Source: o.quotes, OnResult: s.metrics.QuoteFetched}

	s.store = session.NewStore(session.Config{
		TTL:        cfg.SessionTTL(),
		MaxTimers:  cfg.MaxLiveTimers,
		MaxWindows: cfg.MaxWindows,
		Env: mistakes.Env{
			Quotes: s.quotes,
			Tick:   cfg.TickInterval(),
			Delay:  cfg.TimeoutDelay(),
		},
		Console: j.Console,
		Observer: func(route, variant string) hooks.Observer {
			return s.metrics.Observer(route, variant)
		},
		OnClose: func(sid string) {
			if _, err := j.Purge(sid); err != nil {
				log.Warn("journal purge failed", zap.String("session", sid), zap.Error(err))
			}
		},
		Log: log.Named("session"),
	})
	return s, nil
}

// Engine builds the Gin engine with every route registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Gin(s.log.Named("http")))

	RegisterStaticFiles(r)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.registerAPIRoutes(r)
	s.registerPageRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "This page could not be found.")
	})
	return r
}

// Run serves until ctx is cancelled, sweeping idle windows in the background.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.store.Run(sweepCtx, s.cfg.SweepInterval())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close closes every window and the journal.
func (s *Server) Close() error {
	s.store.Shutdown()
	return s.journal.Close()
}
