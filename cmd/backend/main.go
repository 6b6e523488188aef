// Package main provides the entry point for the WAGroups directory service.
//
//	@title			WAGroups Directory API
//	@version		1.0.0
//	@description	A directory backend for categorized WhatsApp group links.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"WAGroups-Backend/internal/analytics"
	"WAGroups-Backend/internal/auth"
	"WAGroups-Backend/internal/config"
	"WAGroups-Backend/internal/database"
	httpHandler "WAGroups-Backend/internal/handler/http"
	"WAGroups-Backend/internal/repository/postgres"
	"WAGroups-Backend/internal/service"
	"WAGroups-Backend/pkg/logger"
	"WAGroups-Backend/pkg/useragent"
	"context"
	"fmt"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "WAGroups-Backend/docs" // swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting WAGroups directory service", zap.String("env", cfg.Env))

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	passwordService := auth.NewPasswordService()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	if cfg.Database.SeedData {
		if err := database.SeedAdmin(db, &cfg.Auth, passwordService, log); err != nil {
			log.Fatal("failed to seed admin account", zap.Error(err))
		}
	}

	storage := postgres.New(db, log)
	directory := service.NewDirectory(storage, &cfg.Directory)

	accessTokenTTL, err := time.ParseDuration(cfg.Auth.AccessTokenTTL)
	if err != nil {
		log.Fatal("invalid access_token_ttl", zap.Error(err))
	}
	refreshTokenTTL, err := time.ParseDuration(cfg.Auth.RefreshTokenTTL)
	if err != nil {
		log.Fatal("invalid refresh_token_ttl", zap.Error(err))
	}

	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:           []byte(cfg.Auth.JWTSecret),
		AccessTokenDuration: accessTokenTTL,
		Issuer:              cfg.Auth.Issuer,
	})

	var recorder analytics.Recorder
	if cfg.Analytics.Enabled {
		uaParser, err := useragent.NewParser(os.Getenv("UA_REGEXES_PATH"), log)
		if err != nil {
			log.Warn("failed to initialize User-Agent parser, telemetry will not classify devices", zap.Error(err))
		}

		processorCfg := analytics.DefaultConfig()
		processorCfg.WorkerCount = cfg.Analytics.WorkerCount
		processorCfg.BufferSize = cfg.Analytics.BufferSize

		processor := analytics.NewProcessor(storage, uaParser, log, processorCfg)
		if err := processor.Start(); err != nil {
			log.Fatal("failed to start click telemetry processor", zap.Error(err))
		}
		defer func() {
			if err := processor.Stop(); err != nil {
				log.Error("failed to stop click telemetry processor", zap.Error(err))
			}
		}()
		recorder = processor
	}

	httpAPIServer := httpHandler.NewServer(
		storage,
		directory,
		recorder,
		jwtService,
		passwordService,
		refreshTokenTTL,
		cfg.HTTPServer.AllowedOrigins,
		log,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTPServer.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      httpAPIServer.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting HTTP server", zap.String("address", addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down WAGroups directory service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}
