package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cse-market-data/config"
	"cse-market-data/internal/api"
	"cse-market-data/internal/broadcast"
	"cse-market-data/internal/cache"
	"cse-market-data/internal/gateway"
	"cse-market-data/internal/logger"
	"cse-market-data/internal/marketdata/indicator"
	"cse-market-data/internal/marketdata/pipeline"
	"cse-market-data/internal/marketdata/tickgen"
	"cse-market-data/internal/markethours"
	"cse-market-data/internal/metrics"
	"cse-market-data/internal/model"
	"cse-market-data/internal/registry"
	redisstore "cse-market-data/internal/store/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[marketserver] starting...")

	if err := godotenv.Load(); err == nil {
		log.Println("[marketserver] loaded .env")
	}

	logger.Init("marketserver", slog.LevelInfo)
	cfg := config.Load()
	processStart := time.Now()

	// ---- Trading window ----
	loc, err := time.LoadLocation(cfg.MarketTZ)
	if err != nil {
		log.Printf("[marketserver] unknown timezone %q, using %s", cfg.MarketTZ, markethours.Casablanca)
		loc = markethours.Casablanca
	}
	window := markethours.Window{
		OpenHour:    cfg.MarketOpenHour,
		OpenMinute:  cfg.MarketOpenMinute,
		CloseHour:   cfg.MarketCloseHour,
		CloseMinute: cfg.MarketCloseMin,
		Loc:         loc,
	}

	// ---- Pipeline ----
	reg := registry.Default()
	builder := pipeline.New(
		reg,
		tickgen.New(rand.New(rand.NewSource(time.Now().UnixNano()))),
		indicator.New(rand.New(rand.NewSource(time.Now().UnixNano()))),
	)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Cache & scheduler ----
	snapCache := cache.New(cache.Config{
		Generator: func(now time.Time, marketOpen bool) (*model.Snapshot, error) {
			start := time.Now()
			snap, err := builder.Build(now, marketOpen)
			prom.RefreshDur.Observe(time.Since(start).Seconds())
			prom.RefreshTotal.Inc()
			if err != nil {
				prom.RefreshFailures.Inc()
			}
			return snap, err
		},
		TTL:        cfg.CacheDuration,
		MarketOpen: window.IsOpen,
	})

	// ---- Fan-out: broadcaster feeding the WebSocket hub ----
	caster := broadcast.New(broadcast.DefaultBuffer)
	caster.OnDrop = func(id string) {
		prom.BroadcastDrops.Inc()
		log.Printf("[marketserver] subscriber %s fell behind, dropped snapshot", id)
	}
	snapCache.OnPublish(caster.Publish)

	// ---- Optional Redis publisher ----
	if cfg.RedisAddr != "" {
		pub, err := redisstore.New(redisstore.PublisherConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			LatestTTL: cfg.SnapshotTTL,
		})
		if err != nil {
			log.Printf("[marketserver] redis publisher disabled: %v", err)
		} else {
			defer pub.Close()
			snapCache.OnPublish(pub.Publish)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := gateway.NewHub()
	hub.OnClientCount = func(n int) { prom.ConnectedWS.Set(float64(n)) }
	wsSub := caster.Subscribe()
	go hub.Run(ctx, wsSub.C)

	scheduler := cache.NewScheduler(snapCache, cfg.UpdateInterval, cfg.Development(), window.IsOpen)
	scheduler.OnSkip = func() { prom.SkippedTicks.Inc() }
	go scheduler.Run(ctx)

	// Keep the age and session gauges current between refreshes.
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				open := window.IsOpen(now)
				prom.SnapshotAge.Set(snapCache.Age().Seconds())
				if open {
					prom.MarketState.Set(1)
				} else {
					prom.MarketState.Set(0)
				}
				var lastUpdate time.Time
				if snap := snapCache.Current(); snap != nil {
					lastUpdate = snap.GeneratedAt
				}
				health.Observe(lastUpdate, snapCache.State() != cache.StateFresh,
					snapCache.LastError(), open, hub.ClientCount())
			}
		}
	}()

	// ---- HTTP API + WebSocket ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	api.RegisterRoutes(mux, api.Deps{
		Cache:       snapCache,
		Registry:    reg,
		MarketOpen:  func() bool { return window.IsOpen(time.Now()) },
		ClientCount: hub.ClientCount,
		Env:         cfg.AppEnv,
		StartedAt:   processStart,
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		log.Printf("[marketserver] listening on %s (env=%s)", cfg.ListenAddr, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[marketserver] server error: %v", err)
		}
	}()

	// Prime the cache so the first readers and WS clients see data
	// immediately instead of paying the generation cost.
	if _, err := snapCache.Refresh(); err != nil {
		log.Printf("[marketserver] initial snapshot failed: %v", err)
	} else {
		log.Printf("[marketserver] initial snapshot ready (%d instruments), market %s",
			reg.Len(), window.StatusString(time.Now()))
	}

	// ---- Graceful shutdown ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[marketserver] shutting down...")

	cancel()
	caster.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	log.Println("[marketserver] stopped")
}
