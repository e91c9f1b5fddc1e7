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

	"github.com/hasnaanagy/salik/internal/realtime"
	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/config"
	"github.com/hasnaanagy/salik/pkg/eventbus"
	"github.com/hasnaanagy/salik/pkg/logger"
	"github.com/hasnaanagy/salik/pkg/middleware"
	ws "github.com/hasnaanagy/salik/pkg/websocket"
)

func main() {
	cfg, err := config.Load("realtime")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	bus, err := eventbus.Connect(cfg.NATS.URL)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer bus.Close()
	logger.Info("Connected to NATS")

	hub := ws.NewHub()
	go hub.Run()
	logger.Info("WebSocket hub started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventHandler := realtime.NewEventHandler(hub)
	if err := eventHandler.RegisterSubscriptions(ctx, bus); err != nil {
		logger.Fatal("Failed to subscribe to events", zap.Error(err))
	}

	handler := realtime.NewHandler(hub)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics("realtime"))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheck("realtime", "1.0.0"))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router, cfg.JWT.Secret)

	// Upgraded WebSocket connections are hijacked from the server, so these
	// timeouts only bound the HTTP handshake and the plain endpoints.
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Realtime service starting", zap.String("port", cfg.Server.Port))
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
