// Package main runs the backend service: news and X feed polling, the
// merged token list API, the trade transaction proxy and the websocket
// update stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/feed"
	"declaw-backend/internal/launch"
	"declaw-backend/internal/market"
	"declaw-backend/internal/observability"
	"declaw-backend/internal/poller"
	"declaw-backend/internal/server"
	"declaw-backend/internal/social"
	"declaw-backend/internal/storage"
	chstore "declaw-backend/internal/storage/clickhouse"
	"declaw-backend/internal/storage/memory"
	"declaw-backend/internal/storage/migrations"
	pgstore "declaw-backend/internal/storage/postgres"
	"declaw-backend/internal/tokens"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for snapshot history")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	sourcesPath := flag.String("sources", os.Getenv("FEED_SOURCES"), "Path to feed sources YAML (defaults to built-in list)")
	tradeURL := flag.String("trade-url", envOr("TRADE_API_URL", launch.DefaultTradeURL), "Trade API endpoint")
	threshold := flag.Float64("graduation-threshold", envFloat("GRADUATION_THRESHOLD", tokens.DefaultGraduationThreshold), "Market cap in USD treated as graduated")
	newsInterval := flag.Duration("news-interval", poller.DefaultNewsInterval, "News refresh interval")
	socialInterval := flag.Duration("social-interval", poller.DefaultSocialInterval, "X feed refresh interval")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)
	metrics := observability.NewMetrics("declaw", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Feed sources
	sources := feed.DefaultSources()
	maxRetained := feed.DefaultMaxRetained
	if *sourcesPath != "" {
		file, err := feed.LoadSources(*sourcesPath)
		if err != nil {
			logger.Fatalf("load sources %s: %v", *sourcesPath, err)
		}
		sources = file.Sources
		maxRetained = file.MaxRetained
	}
	logger.Printf("Polling %d feed sources, retaining up to %d items", len(sources), maxRetained)

	aggregator := feed.NewAggregator(feed.AggregatorOptions{
		Sources:     sources,
		MaxRetained: maxRetained,
		Logger:      logger,
		OnSourceResult: func(source string, err error) {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			metrics.FeedFetchesTotal.WithLabelValues(outcome).Inc()
		},
	})

	socialAgg := social.NewAggregator(social.AggregatorOptions{Logger: logger})

	p := poller.New(poller.Options{
		News:           timedNews{inner: aggregator, metrics: metrics},
		Social:         socialAgg,
		NewsInterval:   *newsInterval,
		SocialInterval: *socialInterval,
		MaxRetained:    maxRetained,
		Logger:         logger,
	})

	// Market data
	marketClient := market.NewClient(market.WithLogger(logger))
	cached := market.NewCachedClient(marketClient, market.DefaultCacheTTL,
		market.WithCacheObserver(func(hit bool) {
			if hit {
				metrics.SnapshotCacheHits.Inc()
			} else {
				metrics.SnapshotCacheMisses.Inc()
			}
		}))

	// Token store
	var (
		tokenStore storage.DeployedTokenStore
		pgPool     *pgstore.Pool
	)
	if *useMemory || *postgresDSN == "" {
		logger.Println("Using in-memory token store")
		tokenStore = memory.NewDeployedTokenStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect postgres: %v", err)
		}
		pgPool = pool
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("run postgres migrations: %v", err)
		}
		tokenStore = pgstore.NewDeployedTokenStore(pool)
		logger.Println("Using PostgreSQL token store")
	}

	// Snapshot history
	var (
		history storage.SnapshotHistoryStore
		chConn  *chstore.Conn
	)
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("run clickhouse migrations: %v", err)
		}
		chConn = conn
		history = chstore.NewSnapshotHistoryStore(conn)
		logger.Println("Snapshot history enabled")
	}

	hub := server.NewHub(logger, func(n int) {
		metrics.ConnectedClients.Set(float64(n))
	})

	api := server.New(server.Options{
		Poller:    p,
		Market:    timedMarket{inner: cached, metrics: metrics},
		Store:     tokenStore,
		History:   history,
		Trade:     launch.NewClient(launch.WithTradeURL(*tradeURL)),
		Hub:       hub,
		Metrics:   metrics,
		Logger:    logger,
		Threshold: *threshold,
	})

	go p.Run(ctx)
	go syncHealthGauges(ctx, p, metrics)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("Listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	cancel()

	// Wait for second signal for immediate shutdown
	go func() {
		sig := <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}

	hub.Close()
	if pgPool != nil {
		pgPool.Close()
	}
	if chConn != nil {
		chConn.Close()
	}
	logger.Println("Shutdown complete")
}

// timedNews wraps the news aggregator with cycle latency observation.
type timedNews struct {
	inner   *feed.Aggregator
	metrics *observability.Metrics
}

func (n timedNews) Aggregate(ctx context.Context) []domain.FeedItem {
	start := time.Now()
	items := n.inner.Aggregate(ctx)
	n.metrics.FeedFetchLatency.Observe(time.Since(start).Seconds())
	return items
}

// timedMarket wraps the snapshot source with batch counters.
type timedMarket struct {
	inner   *market.CachedClient
	metrics *observability.Metrics
}

func (m timedMarket) FetchSnapshots(ctx context.Context, mints []string) map[string]domain.TokenMarketSnapshot {
	start := time.Now()
	snapshots := m.inner.FetchSnapshots(ctx, mints)
	m.metrics.SnapshotBatchLatency.Observe(time.Since(start).Seconds())
	m.metrics.SnapshotsFetched.Add(float64(len(snapshots)))
	if len(snapshots) > 0 {
		m.metrics.SnapshotBatchesTotal.WithLabelValues("ok").Inc()
	} else {
		m.metrics.SnapshotBatchesTotal.WithLabelValues("empty").Inc()
	}
	return snapshots
}

// syncHealthGauges mirrors poller status into Prometheus gauges.
func syncHealthGauges(ctx context.Context, p *poller.Poller, metrics *observability.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := p.Status()
			metrics.FeedItemsRetained.Set(float64(status.NewsItems))
			if status.NewsStale {
				metrics.NewsStale.Set(1)
			} else {
				metrics.NewsStale.Set(0)
			}
			if !status.NewsUpdatedAt.IsZero() {
				metrics.LastSuccessfulNewsRefresh.Set(float64(status.NewsUpdatedAt.Unix()))
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s=%q, using default\n", key, v)
		return fallback
	}
	return f
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
