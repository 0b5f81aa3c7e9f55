package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bazaarhq/bazaar-server/catalog"
	"github.com/bazaarhq/bazaar-server/config"
	"github.com/bazaarhq/bazaar-server/database"
	"github.com/bazaarhq/bazaar-server/handlers"
	"github.com/bazaarhq/bazaar-server/realtime"
	"github.com/bazaarhq/bazaar-server/server"
	"github.com/bazaarhq/bazaar-server/store"
	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// InitiateCronJobs starts the periodic pruning of expired OAuth handshake
// sessions.
func InitiateCronJobs(sessions *store.SessionRepository) error {
	pruneSessions := cron.New()
	err := pruneSessions.AddFunc("@every 5m", func() {
		pruned, err := sessions.PruneExpired()
		if err != nil {
			logrus.Errorf("failed to prune expired sessions: %+v", err)
			return
		}
		if pruned > 0 {
			logrus.Infof("pruned %d expired oauth sessions", pruned)
		}
	})
	if err != nil {
		logrus.Errorf("cron job initiation failed %v", err)
		return err
	}
	pruneSessions.Start()
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Panicf("Failed to load config with error: %+v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logrus.Panicf("Failed to create data directory with error: %+v", err)
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		logrus.Panicf("Failed to initialize and migrate database with error: %+v", err)
	}
	defer db.Close()

	sessionsDB, err := database.ConnectSessions(cfg.Database.SessionsPath)
	if err != nil {
		logrus.Panicf("Failed to initialize and migrate sessions database with error: %+v", err)
	}
	defer sessionsDB.Close()

	logrus.Print("migration successful!!")

	listingRepo := store.NewListingRepository(db)
	adminRepo := store.NewAdminRepository(db)
	sessionRepo := store.NewSessionRepository(sessionsDB)

	if err := InitiateCronJobs(sessionRepo); err != nil {
		logrus.Error("error from cron job", err)
	}

	items, err := catalog.Load()
	if err != nil {
		logrus.Panicf("Failed to load item catalog with error: %+v", err)
	}

	hub := realtime.NewHub()

	srv := server.SetupRoutes(server.Deps{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Admins:         adminRepo,
		Listings:       handlers.NewListingHandler(listingRepo, hub),
		Admin:          handlers.NewAdminHandler(adminRepo),
		Auth:           handlers.NewAuthHandler(cfg.Auth, sessionRepo),
		Catalog:        handlers.NewCatalogHandler(items),
		Hub:            hub,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: srv,
	}

	go func() {
		logrus.Print("Server started at ", cfg.Server.Address())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Panicf("Failed to run server with error: %+v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Print("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %+v", err)
	}
	logrus.Print("Server stopped")
}
