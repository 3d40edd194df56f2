package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go-guildsync/internal/engine"
	"go-guildsync/pkg/app"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/handlers"
	"go-guildsync/pkg/version"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "go.uber.org/automaxprocs"
)

// corsMiddleware allows the configured UI origins
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	fmt.Print("\033[38;5;33mguildsync API Server\033[0m\n")
	log.Printf("Version: %s | Build: %s", version.GetVersionString(), version.Get().BuildDate)
	log.Printf("CPUs: %d | GOMAXPROCS: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appCtx, err := app.InitializeApp(ctx, "guildsync")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	eng, err := engine.New(ctx, appCtx)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	r := chi.NewRouter()
	r.Use(handlers.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware(handlers.ParseCommaSeparated(config.GetEnv("CORS_ORIGINS", "http://localhost:3000"))))
	r.Use(handlers.TracingMiddleware("guildsync"))

	r.Get("/health", handlers.HealthHandler(version.GetVersionString(), appCtx.HealthChecks()))

	apiPrefix := config.GetAPIPrefix()

	humaConfig := engine.APIConfig()

	var api huma.API
	mount := func(router chi.Router) {
		// Upgrades outlive the request timeout
		eng.Events.RegisterHTTPHandler(router, "/events/ws")
		router.Group(func(rest chi.Router) {
			rest.Use(middleware.Timeout(120 * time.Second))
			api = humachi.New(rest, humaConfig)
		})
	}
	if apiPrefix == "" {
		mount(r)
	} else {
		r.Route(apiPrefix, mount)
	}

	eng.Session.RegisterUnifiedRoutes(api, "/session")
	eng.Events.RegisterUnifiedRoutes(api, "/events")
	eng.GameData.RegisterUnifiedRoutes(api, "/gamedata")
	eng.Roster.RegisterUnifiedRoutes(api, "/roster")
	eng.Squads.RegisterUnifiedRoutes(api, "/squads")

	modules := eng.Modules()
	for _, mod := range modules {
		go mod.StartBackgroundTasks(ctx)
	}

	port := app.GetPort("8080")
	srv := &http.Server{
		Addr:        config.GetHost() + ":" + port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	log.Printf("Server: http://localhost:%s%s | OpenAPI: %s/openapi.json", port, apiPrefix, apiPrefix)

	go func() {
		slog.Info("Starting guildsync server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Received shutdown signal, initiating graceful shutdown...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	for _, mod := range modules {
		mod.Stop()
	}

	appCtx.Shutdown(shutdownCtx)
	slog.Info("guildsync shutdown completed")
}
