package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/Shivesh4/MindPath/internal/app"
	"github.com/Shivesh4/MindPath/internal/config"
	"github.com/Shivesh4/MindPath/internal/handlers"
	"github.com/Shivesh4/MindPath/internal/repositories"
	"github.com/Shivesh4/MindPath/internal/routes"
	"github.com/Shivesh4/MindPath/internal/services"
	ws "github.com/Shivesh4/MindPath/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := app.NewLogger(cfg.Environment)
	log.Info().Str("environment", cfg.Environment).Msg("starting mindpath server")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("ping database")
	}
	cancel()

	migrator, err := app.NewMigrator(db, cfg.MigrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("init migrator")
	}
	if err := migrator.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	if version, err := migrator.Version(context.Background()); err == nil {
		log.Info().Int64("version", version).Msg("migrations applied")
	}

	// The registry is built here and injected everywhere it is needed;
	// shutdown below closes every live connection.
	registry := ws.NewRegistry(log)
	relay := ws.NewRelay(registry, log)

	sessionRepo := repositories.NewSessionRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	sessionService := services.NewSessionService(sessionRepo, log)
	bookingService := services.NewBookingService(sessionRepo, bookingRepo, log)
	chatService := services.NewChatService(messageRepo, relay, log)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	chatHandler := handlers.NewChatHandler(chatService)
	webSocketHandler := handlers.NewWebSocketHandler(chatService, registry, log)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterPublicEndpoints(router, webSocketHandler, cfg.JWTSecret, log)
	routes.RegisterProtectedEndpoints(router, sessionHandler, bookingHandler, chatHandler, cfg.JWTSecret)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	registry.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
