package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hasnaanagy/salik/internal/outbox"
	"github.com/hasnaanagy/salik/internal/requests"
	"github.com/hasnaanagy/salik/internal/reviews"
	"github.com/hasnaanagy/salik/internal/rides"
	"github.com/hasnaanagy/salik/internal/services"
	"github.com/hasnaanagy/salik/internal/users"
	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/config"
	"github.com/hasnaanagy/salik/pkg/database"
	"github.com/hasnaanagy/salik/pkg/eventbus"
	"github.com/hasnaanagy/salik/pkg/logger"
	"github.com/hasnaanagy/salik/pkg/middleware"
	redisClient "github.com/hasnaanagy/salik/pkg/redis"
)

func main() {
	cfg, err := config.Load("api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := database.RunMigrations(&cfg.Database, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to PostgreSQL")

	redis, err := redisClient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	bus, err := eventbus.Connect(cfg.NATS.URL)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer bus.Close()
	logger.Info("Connected to NATS")

	// Repositories and services
	outboxRepo := outbox.NewRepository(pool)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	usersHandler := users.NewHandler(usersService)

	servicesRepo := services.NewRepository(pool)
	geoIndex := services.NewGeoIndex(redis)
	servicesManager := services.NewManager(servicesRepo, geoIndex, cfg.Matching)
	servicesHandler := services.NewHandler(servicesManager)

	requestsRepo := requests.NewRepository(pool, outboxRepo)
	requestsService := requests.NewService(requestsRepo, servicesManager)
	requestsHandler := requests.NewHandler(requestsService)

	ridesRepo := rides.NewRepository(pool)
	ridesService := rides.NewService(ridesRepo)
	ridesHandler := rides.NewHandler(ridesService)

	reviewsRepo := reviews.NewRepository(pool)
	reviewsService := reviews.NewService(reviewsRepo)
	reviewsHandler := reviews.NewHandler(reviewsService)

	// Background workers
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go outbox.NewWorker(outboxRepo, bus).Start(ctx)
	go rides.NewSweeper(ridesRepo).Start(ctx)

	// Router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics("api"))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheckWithDeps("api", "1.0.0", map[string]func() error{
		"postgres": func() error { return pool.Ping(context.Background()) },
		"redis":    func() error { return redis.Ping(context.Background()).Err() },
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	usersHandler.RegisterRoutes(router, cfg.JWT.Secret)
	servicesHandler.RegisterRoutes(router, cfg.JWT.Secret)
	requestsHandler.RegisterRoutes(router, cfg.JWT.Secret)
	ridesHandler.RegisterRoutes(router, cfg.JWT.Secret)
	reviewsHandler.RegisterRoutes(router, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("API server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
