package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/prismanis/prismanis/internal/auth"
	"github.com/prismanis/prismanis/internal/collab"
	"github.com/prismanis/prismanis/internal/config"
	"github.com/prismanis/prismanis/internal/export"
	mw "github.com/prismanis/prismanis/internal/middleware"
	"github.com/prismanis/prismanis/internal/trace"
	"github.com/prismanis/prismanis/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	trace.SetLogger(logger.With("component", "trace"))

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	scenes := workspace.NewService(cfg.TraceLimits(), cfg.Mode())
	sceneHandler := workspace.NewHandler(scenes)
	exportHandler := export.NewHandler(scenes, cfg.ExportMaxSize)

	hub := collab.NewHub(scenes)
	go hub.Run()
	wsHandler := collab.NewHandler(hub, authService, cfg.OriginHosts())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Preflight requests for any path; CORS above writes the headers.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Anonymous sessions
	r.HandleFunc("/auth/session", authHandler.StartSession).Methods("POST")
	r.Handle("/auth/me", authService.AuthMiddleware(http.HandlerFunc(authHandler.Me))).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	sceneHandler.Register(api)
	api.HandleFunc("/scenes/{sceneId}/trace.png", exportHandler.TracePNG).Methods("GET")

	// WebSocket endpoint, authenticated by the token query parameter
	r.HandleFunc("/ws/scenes/{sceneId}", wsHandler.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "mode", cfg.Mode())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
