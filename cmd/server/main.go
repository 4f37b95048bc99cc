package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inamate/inamate/editor-go/internal/auth"
	"github.com/inamate/inamate/editor-go/internal/collab"
	"github.com/inamate/inamate/editor-go/internal/config"
	"github.com/inamate/inamate/editor-go/internal/db"
	"github.com/inamate/inamate/editor-go/internal/drawing"
	"github.com/inamate/inamate/editor-go/internal/editor"
	"github.com/inamate/inamate/editor-go/internal/geometry"
	mw "github.com/inamate/inamate/editor-go/internal/middleware"
	"github.com/inamate/inamate/editor-go/internal/shapefile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	gg.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		drawingStore drawing.Store
		userStore    auth.UserStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		store := db.NewStore(pool)
		drawingStore, userStore = store, store
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory stores")
		drawingStore, userStore = drawing.NewMemoryStore(), auth.NewMemoryUserStore()
	}

	editorOpts := []editor.Option{
		editor.WithIndexLimits(cfg.QuadtreeMaxItems, cfg.QuadtreeMaxDepth),
		editor.WithThrottle(cfg.DragThrottle),
	}
	width, height := float64(cfg.CanvasWidth), float64(cfg.CanvasHeight)

	authService := auth.NewService(userStore, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	drawingService := drawing.NewService(drawingStore,
		drawing.WithEditorOptions(editorOpts...),
		drawing.WithDefaultSize(width, height),
	)
	drawingHandler := drawing.NewHandler(drawingService)

	hub := collab.NewHub(drawingService,
		collab.WithEditorOptions(editorOpts...),
		collab.WithCanvasSize(width, height),
		collab.WithAutosave(cfg.AutosaveInterval),
	)
	go hub.Run()

	drawingService.SetLive(func(drawingID string) ([]geometry.Shape, bool) {
		state, ok := hub.Room(drawingID)
		if !ok {
			return nil, false
		}
		return state.Snapshot(), true
	})

	fileHandler := shapefile.NewHandler(cfg.DataDir, drawingService)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.Metrics)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Shape files and export (public)
	fileHandler.Routes(r)

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	drawingHandler.Routes(api)

	// WebSocket endpoint
	origins := cfg.OriginPatterns()
	r.HandleFunc("/ws/drawing/{drawingId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, drawingService, origins)
	})

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

		// Stop the hub first so open drawings are saved
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}()

	slog.Info("server starting", "addr", addr, "canvas", fmt.Sprintf("%dx%d", cfg.CanvasWidth, cfg.CanvasHeight))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, drawings *drawing.Service, origins []string) {
	drawingID := mux.Vars(r)["drawingId"]

	var userID, displayName string

	if drawingID == drawing.PlaygroundID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Browsers cannot set headers on websocket requests
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if err := drawings.CanOpen(r.Context(), drawingID, userID); err != nil {
			switch {
			case errors.Is(err, drawing.ErrNotFound):
				http.Error(w, "drawing not found", http.StatusNotFound)
			case errors.Is(err, drawing.ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				slog.Error("check drawing access", "error", err, "drawing", drawingID)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}
		displayName = user.DisplayName
	}

	hub.Serve(w, r, userID, displayName, drawingID, origins)
}
