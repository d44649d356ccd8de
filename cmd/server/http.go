package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/pkg/lifecycle"
)

// listener serves the API router. It binds before Start returns so an
// occupied port fails startup instead of surfacing in the log later.
type listener struct {
	srv     *http.Server
	logger  *slog.Logger
	drain   time.Duration
	serving atomic.Bool
}

func newListener(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *listener {
	read := cfg.ReadTimeoutDuration()
	return &listener{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: read,
			ReadTimeout:       read,
			WriteTimeout:      cfg.WriteTimeoutDuration(),
			MaxHeaderBytes:    cfg.MaxHeaderBytes(),
		},
		logger: logger.With("system", "http"),
		drain:  cfg.ShutdownTimeoutDuration(),
	}
}

// Ready reports whether the listener is accepting connections.
func (l *listener) Ready() bool {
	return l.serving.Load()
}

// Start binds the address and serves until the coordinator shuts down,
// then drains in-flight requests for up to the shutdown timeout.
func (l *listener) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", l.srv.Addr)
	if err != nil {
		return err
	}
	l.serving.Store(true)
	lc.Check("http", l)

	go func() {
		l.logger.Info("api listening", "addr", ln.Addr().String())
		err := l.srv.Serve(ln)
		l.serving.Store(false)
		if !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("api listener stopped", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.drain)
		defer cancel()

		if err := l.srv.Shutdown(ctx); err != nil {
			l.logger.Error("api drain incomplete", "error", err, "drain", l.drain)
			return
		}
		l.logger.Info("api drained")
	})

	return nil
}
