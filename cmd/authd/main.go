// Package main runs the authkit session service: HTTP auth endpoints backed
// by an in-memory user directory, optional Redis-backed refresh and
// revocation storage, and a Prometheus metrics endpoint.
//
// Configuration comes from the environment (or a local .env file):
//
//	ACCESS_TOKEN_SECRET   required
//	REFRESH_TOKEN_SECRET  required, must differ from ACCESS_TOKEN_SECRET
//	HTTP_ADDR             listen address, default :8080
//	REDIS_ADDR            enables Redis storage when set
//
// Run:
//
//	ACCESS_TOKEN_SECRET=... REFRESH_TOKEN_SECRET=... go run ./cmd/authd
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillswaphq/authkit"
	"github.com/skillswaphq/authkit/directory"
	"github.com/skillswaphq/authkit/httpapi"
	"github.com/skillswaphq/authkit/internal/config"
	"github.com/skillswaphq/authkit/metrics/export/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	authCfg := authkit.DefaultConfig()
	authCfg.JWT.AccessSecret = []byte(cfg.AccessTokenSecret)
	authCfg.JWT.RefreshSecret = []byte(cfg.RefreshTokenSecret)
	authCfg.JWT.Issuer = cfg.JWTIssuer
	authCfg.JWT.Audience = cfg.JWTAudience
	authCfg.JWT.AccessTTL = cfg.AccessTTL()
	authCfg.JWT.RefreshTTL = cfg.RefreshTTL()
	authCfg.Password.MinLength = cfg.PasswordMinLength
	authCfg.Refresh.RotateOnRefresh = cfg.RotateRefreshTokens
	authCfg.Refresh.SweepInterval = cfg.SweepEvery()
	authCfg.Audit.Enabled = cfg.AuditEnabled
	authCfg.Metrics.Enabled = cfg.MetricsEnabled
	authCfg.Metrics.EnableLatencyHistograms = cfg.MetricsEnabled

	builder := authkit.New().
		WithConfig(authCfg).
		WithDirectory(directory.NewMemory())

	if cfg.AuditEnabled {
		builder = builder.WithAuditSink(authkit.NewJSONWriterSink(os.Stdout))
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		builder = builder.WithRedis(rdb)
		log.Printf("using redis at %s", cfg.RedisAddr)
	}

	manager, err := builder.Build()
	if err != nil {
		log.Fatalf("build session manager: %v", err)
	}
	defer manager.Close()

	router := httpapi.NewServer(manager).Router()
	if cfg.MetricsEnabled {
		router.Handle("/metrics", prometheus.NewPrometheusExporter(manager).Handler())
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
