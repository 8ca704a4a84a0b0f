package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"creperie/api/config"
	"creperie/api/database"
	"creperie/api/geoip"
	"creperie/api/handlers"
	"creperie/api/identity"
	"creperie/api/logging"
	"creperie/api/middleware"
	"creperie/api/store"
	"creperie/api/tracker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load("config.toml")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logging.Setup(cfg.Log.Level)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Event store: hosted ClickHouse when configured, otherwise the
	// bounded in-memory store for demo deployments.
	var eventStore store.EventStore
	if cfg.HasClickHouse() {
		chClient, err := database.NewClickHouseDB(cfg.ClickHouse)
		if err != nil {
			log.Error("failed to initialize ClickHouse", "error", err)
			os.Exit(1)
		}
		defer chClient.Close()
		eventStore = store.NewClickHouseStore(chClient)
	} else {
		log.Warn("no ClickHouse configured, using in-memory event store", "cap", cfg.Store.MemoryCap)
		eventStore = store.NewMemoryStore(cfg.Store.MemoryCap)
	}

	geoOpts := []geoip.Option{}
	if cfg.Geo.IPEndpoint != "" {
		geoOpts = append(geoOpts, geoip.WithIPEndpoint(cfg.Geo.IPEndpoint))
	}
	geoResolver := geoip.NewResolver(log, geoOpts...)
	ids := identity.NewResolver()
	trk := tracker.New(eventStore, geoResolver, ids, log)

	trackHandlers := handlers.NewTrackHandlers(trk, ids)
	reportHandlers := handlers.NewReportHandlers(eventStore)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.Origin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-KEY"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		// Public capture endpoints, consent-gated inside the pipeline.
		api.POST("/track", trackHandlers.Track)
		api.POST("/track/page-view", trackHandlers.TrackPageView)

		// Admin accounts are Postgres-backed; without a database the
		// back office authenticates with the static API key only.
		if cfg.HasPostgres() {
			dbClient, err := database.NewPostgresDB(cfg.Postgres.URL)
			if err != nil {
				log.Error("failed to initialize PostgreSQL", "error", err)
				os.Exit(1)
			}
			defer dbClient.Close()

			authHandlers := handlers.NewAuthHandlers(store.NewUserStore(dbClient.DB))
			api.POST("/signup", authHandlers.Signup)
			api.POST("/login", authHandlers.Login)
			api.POST("/logout", authHandlers.Logout)
		} else {
			log.Warn("no admin database configured, JWT login disabled")
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			admin.GET("/events", reportHandlers.Events)
			admin.GET("/summary", reportHandlers.Summary)
			admin.GET("/top-pages", reportHandlers.TopPages)
			admin.GET("/export.csv", reportHandlers.ExportCSV)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("analytics API listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exiting")
}
