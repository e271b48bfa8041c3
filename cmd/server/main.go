package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"todoapp/internal/audit"
	auditrepo "todoapp/internal/audit/repository"
	authhandler "todoapp/internal/auth/handler"
	authservice "todoapp/internal/auth/service"
	"todoapp/internal/config"
	"todoapp/internal/db"
	"todoapp/internal/security"
	"todoapp/internal/server"
	"todoapp/internal/server/middleware"
	"todoapp/internal/session"
	"todoapp/internal/telemetry"
	todohandler "todoapp/internal/todo/handler"
	todorepo "todoapp/internal/todo/repository"
	userrepo "todoapp/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Key material is a boot-time fatal: the process must not start without it.
	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.OTLPEndpoint, "todoapp")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer sqlDB.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("redis: %v", err)
	}
	cancel()

	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(sqlDB), middleware.GetClientIP)
	authSvc := authservice.NewAuthService(
		userrepo.NewPostgresRepository(sqlDB),
		session.NewRedisStore(redisClient),
		security.NewHasher(cfg.BcryptCost),
		tokens,
		auditor,
	)

	router := server.NewRouter(
		authhandler.NewAuthHandler(authSvc),
		todohandler.NewTodoHandler(todorepo.NewPostgresRepository(sqlDB)),
		tokens,
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
