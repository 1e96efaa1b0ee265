package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-api/internal/adapter/handler"
	"github.com/rl1809/inventory-api/internal/adapter/storage"
	"github.com/rl1809/inventory-api/internal/adapter/token"
	"github.com/rl1809/inventory-api/internal/config"
	"github.com/rl1809/inventory-api/internal/core/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	// Adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.InitSchema(ctx); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}
	redisAdapter := storage.NewRedisAdapter(rdb)
	jwtAdapter := token.NewJWTAdapter(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	// Services
	itemService := service.NewItemService(mysqlAdapter, redisAdapter, cfg.ItemCacheTTL)
	authService := service.NewAuthService(mysqlAdapter, jwtAdapter)

	// HTTP server
	httpHandler := handler.NewHTTPHandler(itemService, authService, jwtAdapter)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}
