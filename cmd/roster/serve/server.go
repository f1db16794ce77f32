package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/cron"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/jobs"
	"github.com/charmbracelet/roster/pkg/stats"
	"github.com/charmbracelet/roster/pkg/web"
	"golang.org/x/sync/errgroup"
)

// Server runs the API server, the stats server and the job scheduler.
type Server struct {
	HTTPServer  *web.HTTPServer
	StatsServer *stats.StatsServer
	Cron        *cron.Scheduler
	Config      *config.Config
	Backend     *backend.Backend
	DB          *db.DB

	logger *log.Logger
	ctx    context.Context
}

// NewServer returns a new *Server. It expects a context with
// *backend.Backend, *db.DB, *log.Logger, and *config.Config attached.
func NewServer(ctx context.Context) (*Server, error) {
	var err error
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	srv := &Server{
		Config:  cfg,
		Backend: backend.FromContext(ctx),
		DB:      db.FromContext(ctx),
		logger:  log.FromContext(ctx).WithPrefix("server"),
		ctx:     ctx,
	}

	sched := cron.NewScheduler(ctx)
	for n, j := range jobs.List() {
		id, err := sched.AddNamed(n, j.Runner.Spec(ctx), j.Runner.Func(ctx))
		if err != nil {
			srv.logger.Warn("error adding cron job", "job", n, "err", err)
		}

		j.ID = id
	}
	srv.Cron = sched

	srv.HTTPServer, err = web.NewHTTPServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create http server: %w", err)
	}

	if cfg.HTTP.TLSCertPath != "" && cfg.HTTP.TLSKeyPath != "" {
		cr, err := web.NewCertReloader(ctx, cfg.HTTP.TLSCertPath, cfg.HTTP.TLSKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load tls certificate: %w", err)
		}
		srv.HTTPServer.SetTLSConfig(cr.TLSConfig())
	}

	srv.StatsServer, err = stats.NewStatsServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create stats server: %w", err)
	}

	return srv, nil
}

// Start starts the enabled servers and the scheduler. It blocks until every
// server has stopped.
func (s *Server) Start() error {
	errg, _ := errgroup.WithContext(s.ctx)

	if s.Config.HTTP.Enabled {
		errg.Go(func() error {
			s.logger.Print("Starting HTTP server", "addr", s.Config.HTTP.ListenAddr, "tls", s.HTTPServer.Server.TLSConfig != nil)
			if err := s.HTTPServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if s.Config.Stats.Enabled {
		errg.Go(func() error {
			s.logger.Print("Starting Stats server", "addr", s.Config.Stats.ListenAddr)
			if err := s.StatsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	errg.Go(func() error {
		s.Cron.Start()
		return nil
	})
	return errg.Wait()
}

// Shutdown lets the server gracefully shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return s.HTTPServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		return s.StatsServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		for _, j := range jobs.List() {
			s.Cron.Remove(j.ID)
		}
		s.Cron.Shutdown()
		return nil
	})
	return errg.Wait()
}

// Close closes the servers immediately.
func (s *Server) Close() error {
	var errg errgroup.Group
	errg.Go(s.HTTPServer.Close)
	errg.Go(s.StatsServer.Close)
	errg.Go(func() error {
		s.Cron.Stop()
		return nil
	})
	return errg.Wait()
}
