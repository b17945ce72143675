package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_backend/internal/config"
	"auth_backend/internal/handlers"
	"auth_backend/internal/logger"
	"auth_backend/internal/repository"
	"auth_backend/internal/repository/db"
	"auth_backend/internal/server"
	"auth_backend/internal/service"
	"auth_backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title                      Auth Backend API
// @version                    1.0
// @description                Account signup, login, logout, session check and profile picture updates over a cookie-carried JWT.
// @host                       localhost:3000
// @BasePath                   /
// @securityDefinitions.apikey CookieAuth
// @in                         cookie
// @name                       token
func main() {
	// load .env, configs/config.yml and environment
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("invalid configuration", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel, logger.FormatFor(cfg.IsProduction()))
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer startCancel()

	// open user store
	repos, closeStore, err := openStore(startCtx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open user store", "driver", cfg.StoreDriver, "err", err)
	}
	defer closeStore()

	// image host
	s3Client, err := storage.NewS3Client(startCtx, cfg.Images)
	if err != nil {
		log.Fatalw("failed to init image storage", "err", err)
	}
	images := storage.NewS3ImageHost(s3Client, cfg.Images)

	// wire dependencies
	tokens, err := service.NewTokenCodec(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatalw("failed to init token codec", "err", err)
	}
	services := service.NewService(repos, tokens, service.NewPasswordHasher(service.DefaultHashCost), images)
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		CookieMaxAge:    cfg.JWTTTL,
		SecureCookies:   cfg.IsProduction(),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		MaxPictureBytes: cfg.Images.MaxBytes,
	})

	// start HTTP server
	srv := server.New(server.DefaultTimeouts())
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server started", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)

	// graceful shutdown
	waitForShutdown(srv, log)
}

// openStore connects the configured backend and returns its repositories with a matching close func.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repository.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		sqlDB, err := db.InitSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Errorw("failed to close sqlite", "err", cerr)
			}
		}
		return repository.NewSQLiteRepository(sqlDB), closeFn, nil
	default:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, repository.UsersCollection)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if cerr := client.Disconnect(dctx); cerr != nil {
				log.Errorw("failed to disconnect mongo", "err", cerr)
			}
		}
		return repository.NewMongoRepository(database), closeFn, nil
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
