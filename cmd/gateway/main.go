package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/technosupport/ts-dvr-gateway/internal/api"
	"github.com/technosupport/ts-dvr-gateway/internal/auth"
	"github.com/technosupport/ts-dvr-gateway/internal/config"
	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/live"
	"github.com/technosupport/ts-dvr-gateway/internal/middleware"
	"github.com/technosupport/ts-dvr-gateway/internal/platform/paths"
	"github.com/technosupport/ts-dvr-gateway/internal/platform/windows"
	"github.com/technosupport/ts-dvr-gateway/internal/poller"
	"github.com/technosupport/ts-dvr-gateway/internal/ratelimit"
	"github.com/technosupport/ts-dvr-gateway/internal/registry"
	"github.com/technosupport/ts-dvr-gateway/internal/tokens"
)

const (
	serviceName  = "TS-DVR-Gateway"
	eventIDStart = 100
	eventIDStop  = 101
	eventIDError = 102
)

func main() {
	// Windows service check
	isService := windows.IsWindowsService()
	elog := windows.NewEventLogger(serviceName)
	defer elog.Close()

	if isService {
		elog.Info(eventIDStart, "Starting as Windows Service")
	}

	stopChan := make(chan struct{})
	if isService {
		go func() {
			if err := windows.RunAsService(serviceName, stopChan); err != nil {
				elog.Error(eventIDError, fmt.Sprintf("Service run error: %v", err))
				os.Exit(1)
			}
		}()
	}

	if err := paths.EnsureDirs(); err != nil {
		elog.Error(eventIDError, fmt.Sprintf("Platform init error: %v", err))
		log.Fatalf("Platform init error: %v", err)
	}

	// Config
	cfgPath := paths.ResolveConfigPath(os.Getenv("GATEWAY_CONFIG"))
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	// DB
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		log.Fatalf("DB open error: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("DB ping error: %v", err)
	}

	// Shared clients
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = nats.Connect(cfg.NATS.URL,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second))
		if err != nil {
			// The gateway still ingests and streams without NATS.
			log.Printf("[WARN] NATS connect %s: %v, publishing disabled", cfg.NATS.URL, err)
			nc = nil
		}
	}

	// Models
	serverModel := data.ServerModel{DB: db}
	eventModel := data.EventModel{DB: db}
	userModel := data.UserModel{DB: db}
	stateModel := data.PollStateModel{DB: db}

	// Ingestion components
	resolver := registry.NewResolver(serverModel, registry.ClientLister{},
		time.Duration(cfg.Events.CameraCacheTTLSeconds)*time.Second)
	dedup := poller.NewDedup(cfg.Events.DedupMaxKeys,
		time.Duration(cfg.Events.DedupTTLSeconds)*time.Second)
	hub := live.NewHub()

	var pub poller.Publisher
	if nc != nil {
		pub = poller.NewNATSPublisher(nc, cfg.NATS.Subject, cfg.NATS.PublishRetryMax)
	}

	ingest := poller.New(serverModel, eventModel, stateModel, poller.ClientFetcher{},
		pub, hub, resolver, dedup, cfg.PollerConfig())
	ingest.Start()

	// Config reload feeds the poller tunables.
	watcher := config.NewWatcher(cfgPath, func(newCfg *config.Config) {
		ingest.UpdateConfig(newCfg.PollerConfig())
	})
	watcher.Start()

	// Auth components
	tokenMgr := tokens.NewManager(cfg.Auth.SigningKey)
	blacklist := auth.NewRedisBlacklist(rdb)
	limiter := ratelimit.NewLimiter(rdb, cfg.Auth.RateLimitSalt)

	app := &api.API{
		Servers:   serverModel,
		Events:    eventModel,
		Users:     userModel,
		Tokens:    tokenMgr,
		Blacklist: blacklist,
		Limiter:   limiter,
		LoginLimit: ratelimit.LimitConfig{
			Rate:   cfg.Auth.LoginRate,
			Window: time.Duration(cfg.Auth.LoginWindowSecs) * time.Second,
		},
		JWTAuth:  middleware.NewJWTAuth(tokenMgr, blacklist),
		Resolver: resolver,
		Hub:      hub,
		DB:       db,
	}

	server := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      app.Routes(),
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting gateway on %s", cfg.HTTP.ListenAddr)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			elog.Error(eventIDError, fmt.Sprintf("HTTP server error: %v", err))
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for service stop or interrupt.
	if isService {
		<-stopChan
		elog.Info(eventIDStop, "Service stop requested")
	} else {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Printf("Interrupt received, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	watcher.Stop()
	ingest.Stop()
	hub.Close()
	if nc != nil {
		nc.Close()
	}

	if err := server.Shutdown(ctx); err != nil {
		elog.Error(eventIDError, fmt.Sprintf("Graceful shutdown error: %v", err))
	}
	elog.Info(eventIDStop, "Gateway stopped gracefully")
}
