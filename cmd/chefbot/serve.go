package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/zoobzio/chefbot/internal/server"
	"go.uber.org/zap"
)

const shutdownGrace = 10 * time.Second

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var c common
	c.register(fs)
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if *addr != "" {
		a.cfg.HTTP.Addr = *addr
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           server.New(a.chef, a.logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
