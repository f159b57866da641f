package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"TAScan/pkg/config"
	xhttp "TAScan/pkg/http"
	applogger "TAScan/pkg/logger"
)

// consumer is the subset of *kafka.Consumer the app drives.
type consumer interface {
	Run(ctx context.Context, shutdownTimeout time.Duration) error
}

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	logger   *applogger.Logger
	http     *xhttp.Server
	consumer consumer
	runners  []func(ctx context.Context) error
	closers  []namedCloser
}

// New creates a new App instance.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server) *App {
	return &App{cfg: cfg, logger: l, http: srv}
}

// SetConsumer attaches the Kafka consumer run alongside the HTTP server.
func (a *App) SetConsumer(c consumer) { a.consumer = c }

// AddRunner registers a background task that must return once ctx is done.
func (a *App) AddRunner(fn func(ctx context.Context) error) {
	a.runners = append(a.runners, fn)
}

// AddCloser registers a resource closed after the server and consumer stop.
// Closers run in registration order.
func (a *App) AddCloser(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// Run starts the application and blocks until SIGINT/SIGTERM or a component fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with a caller-controlled lifetime.
func (a *App) RunContext(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.http.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		return a.http.Stop(context.Background())
	})

	for _, fn := range a.runners {
		g.Go(func() error { return fn(gctx) })
	}

	if a.consumer != nil {
		g.Go(func() error {
			return a.consumer.Run(gctx, a.cfg.Server.ShutdownTimeout)
		})
		a.logger.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.RequestsTopic))
	}

	err := g.Wait()
	if err != nil {
		a.logger.Error("app stopped with error", applogger.Error(err))
	}
	a.close()
	return err
}

func (a *App) close() {
	// flush collected logs while the producer is still open
	a.logger.RemoveCollector()
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.logger.Warn("close failed", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
}
