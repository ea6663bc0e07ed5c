package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/api"
	"github.com/samirwankhede/pagila-reports/internal/config"
	kafkax "github.com/samirwankhede/pagila-reports/internal/kafka"
	"github.com/samirwankhede/pagila-reports/internal/logger"
	"github.com/samirwankhede/pagila-reports/internal/middleware"
	redisx "github.com/samirwankhede/pagila-reports/internal/redis"
	reportsService "github.com/samirwankhede/pagila-reports/internal/service/reports"
	"github.com/samirwankhede/pagila-reports/internal/store"
	"github.com/samirwankhede/pagila-reports/internal/store/rentals"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	connector, err := store.NewConnector(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Fatal("database config", zap.Error(err))
	}
	db := store.NewDB(connector, log)
	rentalsRepo := rentals.NewRentalsRepository(db, log)

	var events reportsService.Publisher
	if brokers := kafkax.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		producer := kafkax.NewProducer(brokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
		log.Info("render events enabled", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}
	svc := reportsService.NewReportsService(log, rentalsRepo, events)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware())
	if cfg.RedisAddr != "" {
		rdb := redisx.NewClient(cfg.RedisAddr)
		defer rdb.Close()
		r.Use(middleware.HybridRateLimit(rdb, cfg.RateLimitRPS, cfg.RateBurst))
	} else {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateBurst))
	}

	if err := api.RegisterRoutes(r, log, svc, db); err != nil {
		log.Fatal("register routes", zap.Error(err))
	}

	// metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.HTTPPort), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server exited")
}
