package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/middleware"
	"github.com/akinalp/rollcall/ws"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, relay gateway and observer websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.cfg
	logger := rt.logger.Named("main")

	if err := cfg.JWT.RequireSecret(); err != nil {
		return err
	}

	hub := ws.NewHub(rt.logger)

	svcs, res, err := initServices(rt, hub)
	if err != nil {
		return err
	}
	defer res.Close()

	serverCtx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()

	registerHubCallbacks(serverCtx, hub, svcs.Adapter)
	go hub.Run()

	h := initHandlers(rt, svcs, res, hub)

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth, rt.store.Members)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Gateway-Key"},
		AllowCredentials: false,
	})

	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     corsHandler.Handler(middleware.RequestLogger(rt.logger)(mux)),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would cut long-lived websocket connections.
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("sources",
		zap.Bool("gateway", cfg.Gateway.Enabled()),
		zap.Bool("livekit", cfg.LiveKit.Enabled()),
		zap.Bool("email", cfg.Email.Enabled()),
	)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	select {
	case err := <-serveErr:
		if err != nil {
			hub.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
	case <-done:
	}
	logger.Info("shutting down")

	// Abort relay reconciliations still running, close websockets so
	// clients see the server going away, then let in-flight HTTP requests
	// finish.
	cancelServer()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
