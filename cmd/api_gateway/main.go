// cmd/api_gateway serves the index query surface: REST endpoints over the
// SQLite store and a WebSocket feed of freshly published index records
// relayed from Redis PubSub.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"index-systemv1/config"
	"index-systemv1/internal/gateway"
	"index-systemv1/internal/logger"
	"index-systemv1/internal/metrics"
	sqlitestore "index-systemv1/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[api_gateway] starting...")
	logger.Init("api_gateway", slog.LevelInfo)

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The gateway's live feed comes from Redis; unlike the engine, it cannot
	// run without it.
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("[api_gateway] redis connection failed: %v", err)
	}
	log.Printf("[api_gateway] redis connected at %s", cfg.RedisAddr)

	store, err := sqlitestore.New(sqlitestore.Config{Path: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[api_gateway] sqlite open failed: %v", err)
	}
	defer store.Close()

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.SetSQLiteOK(true)
	health.SetRedisConnected(true)
	health.StartLivenessChecker(ctx, rdb, store.DB(), 10*time.Second)

	hub := gateway.NewHub(rdb, prom)
	go hub.Run(ctx)

	guard := &gateway.TOTPGuard{Secret: cfg.AdminTOTPSecret}
	if cfg.AdminTOTPSecret == "" {
		log.Println("[api_gateway] WARNING: ADMIN_TOTP_SECRET not set, admin endpoints disabled")
	}

	router := gateway.NewRouter(store, store, hub, rdb, guard, health, prom, gateway.RouterConfig{
		IndexSize:    cfg.IndexSize,
		FallbackDays: cfg.FallbackDays,
		LookbackDays: cfg.LookbackDays,
	})

	srv := &http.Server{Addr: cfg.GatewayAddr, Handler: router.Mux()}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("[api_gateway] serving at http://localhost%s", cfg.GatewayAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[api_gateway] server error: %v", err)
		}
	}()

	<-sigCh
	log.Println("[api_gateway] shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	log.Println("[api_gateway] shutdown complete.")
}
