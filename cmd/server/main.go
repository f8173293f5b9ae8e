package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collaborative-whiteboard/auth"
	"collaborative-whiteboard/internal/config"
	"collaborative-whiteboard/internal/db"
	"collaborative-whiteboard/internal/middleware"
	"collaborative-whiteboard/internal/room"
	"collaborative-whiteboard/internal/shape"
	"collaborative-whiteboard/internal/thread"
	"collaborative-whiteboard/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Initialize Redis
	redis.InitRedis()
	cache := redis.NewCache(redis.RedisClient)

	// Room hubs: the authoritative sequencer per room. Each hub owns its
	// persistence worker so durable writes land in sequencer order.
	shapeRepo := shape.NewRepository(db.AppDb)
	manager := room.NewManager(shapeRepo, redis.RedisClient, log.Logger)
	defer manager.Shutdown()

	// Services and handlers
	shapeService := shape.NewService(manager)
	shapeHandler := shape.NewHandler(shapeService)

	threadRepo := thread.NewRepository(db.AppDb)
	threadService := thread.NewService(threadRepo, cache, manager)
	threadHandler := thread.NewHandler(threadService)

	// Initialize Gin router
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}
	if config.AppConfig.AllowAllOrigins {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// Room routes
	router.GET("/rooms/:id/ws", auth.AuthMiddleWare(), manager.ServeWS)
	router.GET("/rooms/:id/shapes", auth.AuthMiddleWare(), shapeHandler.List)
	router.POST("/rooms/:id/clear", auth.AuthMiddleWare(), shapeHandler.Clear)

	// Annotation registry routes
	router.GET("/rooms/:id/threads", auth.AuthMiddleWare(), threadHandler.List)
	router.POST("/rooms/:id/threads", auth.AuthMiddleWare(), threadHandler.Create)
	router.POST("/threads/:id/comments", auth.AuthMiddleWare(), threadHandler.AddComment)
	router.POST("/threads/:id/focus", auth.AuthMiddleWare(), threadHandler.Focus)
	router.POST("/threads/:id/resolve", auth.AuthMiddleWare(), threadHandler.Resolve)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Info().Str("port", serverPort).Msg("server listening")
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shutdown complete")
}
