// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-findu/internal/config"
	"campus-findu/internal/database"
	"campus-findu/internal/handlers"
	"campus-findu/internal/matching"
	"campus-findu/internal/middleware"
	"campus-findu/internal/services"
	"campus-findu/internal/store"
	"campus-findu/internal/websocket"
	"campus-findu/pkg/auth"
	"campus-findu/pkg/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env нужен только для локальной разработки
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	log := logrus.New()
	if cfg.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := database.NewMongoDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}
	cancelIndex()

	validator.Init()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiration)*time.Hour)

	// Коллекции
	userCollection := db.Database.Collection("users")
	foundCollection := db.Database.Collection("found_items")
	lostCollection := db.Database.Collection("lost_items")
	notificationCollection := db.Database.Collection("notifications")
	deviceTokenCollection := db.Database.Collection("device_tokens")

	// Websocket-хаб для real-time уведомлений
	hub := websocket.NewHub(log)
	go hub.Run()
	defer hub.Shutdown()

	// Сервисный слой: хранилище предметов → подбор → уведомления
	itemStore := store.NewItemStore(foundCollection, lostCollection)
	notificationService := services.NewNotificationService(cfg, notificationCollection, deviceTokenCollection, hub, log)
	matcher := matching.NewMatcher(itemStore, notificationService, log)
	itemService := services.NewItemService(itemStore, matcher, log)
	statsService := services.NewStatsService(foundCollection, lostCollection, userCollection)
	fileService := services.NewFileService(cfg.UploadDir, cfg.MaxUploadSize)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(userCollection, jwtManager)
	userHandler := handlers.NewUserHandler(userCollection)
	itemHandler := handlers.NewItemHandler(itemService)
	notificationHandler := handlers.NewNotificationHandler(notificationCollection, notificationService)
	templateHandler := handlers.NewTemplateHandler()
	fileHandler := handlers.NewFileHandler(fileService)
	statsHandler := handlers.NewStatsHandler(statsService)
	wsHandler := handlers.NewWebSocketHandler(hub, jwtManager, log)

	router := setupRouter(cfg, log, jwtManager, authHandler, userHandler, itemHandler,
		notificationHandler, templateHandler, fileHandler, statsHandler, wsHandler, hub)

	srv := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}

	log.Info("server stopped")
}

func setupRouter(
	cfg *config.Config,
	log *logrus.Logger,
	jwtManager *auth.JWTManager,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	itemHandler *handlers.ItemHandler,
	notificationHandler *handlers.NotificationHandler,
	templateHandler *handlers.TemplateHandler,
	fileHandler *handlers.FileHandler,
	statsHandler *handlers.StatsHandler,
	wsHandler *handlers.WebSocketHandler,
	hub *websocket.Hub,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(cfg.MaxUploadSize + 1<<20))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindow)*time.Second)
		router.Use(limiter.RateLimit())
	}

	// Статика загруженных фото
	router.Static("/uploads", cfg.UploadDir)

	// Health checks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"ws_connections": hub.GetConnectionsCount(),
		})
	})
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Websocket подключается со своим токеном в query
	router.GET("/ws", wsHandler.HandleConnection)

	api := router.Group("/api/v1")
	{
		// Публичные маршруты
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/categories", templateHandler.GetCategories)
		api.GET("/categories/:category/template", templateHandler.GetFieldTemplate)

		// Защищённые маршруты
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))
		{
			protected.GET("/users/me", userHandler.GetProfile)
			protected.PUT("/users/me", userHandler.UpdateProfile)

			protected.POST("/items/found", itemHandler.SubmitFound)
			protected.POST("/items/lost", itemHandler.SubmitLost)
			protected.GET("/items/found/:id", itemHandler.GetFoundItem)
			protected.GET("/items/lost/:id", itemHandler.GetLostItem)
			protected.POST("/items/found/:id/complete", itemHandler.CompleteFoundItem)
			protected.POST("/items/lost/:id/complete", itemHandler.CompleteLostItem)
			protected.GET("/items/my", itemHandler.GetMyItems)
			protected.GET("/items/recent", itemHandler.GetRecentActivity)

			protected.GET("/notifications", notificationHandler.GetNotifications)
			protected.GET("/notifications/unread-count", notificationHandler.GetUnreadCount)
			protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
			protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
			protected.POST("/devices", notificationHandler.RegisterDevice)
			protected.DELETE("/devices", notificationHandler.UnregisterDevice)

			protected.POST("/files/images", fileHandler.UploadImage)

			protected.GET("/stats/matching", statsHandler.GetMatchingStats)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "Method not allowed",
		})
	})

	return router
}
