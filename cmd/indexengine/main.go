// cmd/indexengine is the ingestion and computation daemon. Each pass pulls
// the ticker universe, fetches and split-adjusts every ticker's history,
// recomputes the daily index series, and publishes the latest record to
// Redis. Passes run on a cron schedule (after the US close) and on demand
// via the config:recompute channel.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"index-systemv1/config"
	"index-systemv1/internal/index"
	"index-systemv1/internal/ingest"
	"index-systemv1/internal/logger"
	"index-systemv1/internal/markethours"
	"index-systemv1/internal/metrics"
	"index-systemv1/internal/notification"
	redisstore "index-systemv1/internal/store/redis"
	sqlitestore "index-systemv1/internal/store/sqlite"
	"index-systemv1/pkg/nasdaqfeed"
	"index-systemv1/pkg/yahoofin"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[indexengine] starting...")
	logger.Init("indexengine", slog.LevelInfo)

	cfg := config.Load()
	log.Printf("[indexengine] index size K=%d, universe limit %d, history %s",
		cfg.IndexSize, cfg.UniverseLimit, cfg.HistoryPeriod)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- SQLite store (system of record) ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	store, err := sqlitestore.New(sqlitestore.Config{Path: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[indexengine] sqlite init failed: %v", err)
	}
	defer store.Close()
	health.SetSQLiteOK(true)
	log.Println("[indexengine] sqlite store ready")

	// ---- Redis publisher (best effort) ----
	var publisher *redisstore.Publisher
	publisher, err = redisstore.New(redisstore.PublisherConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[indexengine] WARNING: redis init failed: %v (continuing without redis)", err)
		publisher = nil
		health.SetRedisConnected(false)
	} else {
		health.SetRedisConnected(true)
		log.Println("[indexengine] redis publisher ready")
	}

	if publisher != nil {
		health.StartLivenessChecker(ctx, publisher.Client(), store.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, store.DB(), 10*time.Second)
	}

	// ---- Providers ----
	yahoo := yahoofin.NewClient(yahoofin.Config{
		BaseURL: cfg.YahooBaseURL,
		Timeout: time.Duration(cfg.FetchTimeout) * time.Second,
	})
	nasdaq := nasdaqfeed.NewClient(nasdaqfeed.Config{
		BaseURL: cfg.NasdaqBaseURL,
		Timeout: time.Duration(cfg.FetchTimeout) * time.Second,
	})

	ingestSvc := ingest.New(
		&ingest.NasdaqUniverse{Client: nasdaq},
		&ingest.YahooHistory{Client: yahoo},
		store,
		ingest.Config{
			UniverseLimit: cfg.UniverseLimit,
			HistoryPeriod: cfg.HistoryPeriod,
			FetchRetries:  cfg.FetchRetries,
		},
		prom,
	)

	engine := index.NewEngine(store, store, index.Config{ConstituentCount: cfg.IndexSize})
	notifier := buildNotifier(cfg)

	runPass := func(ctx context.Context) {
		report, err := ingestSvc.Run(ctx)
		if err != nil {
			log.Printf("[indexengine] ingestion pass failed: %v", err)
			notifier.Send(ctx, notification.PassFailedAlert(err))
			return
		}
		health.SetUniverseSize(report.UniverseSize)
		health.SetLastIngestAt(time.Now())
		if report.Failed > 0 {
			notifier.Send(ctx, notification.IngestFailureAlert(report.Failed, report.UniverseSize))
		}

		dates, err := store.ObservationDates(lookbackFrom(cfg.LookbackDays), "")
		if err != nil {
			log.Printf("[indexengine] list dates failed: %v", err)
			return
		}
		computeDates(ctx, engine, store, publisher, notifier, prom, health, dates)
	}

	// Initial pass on startup, then on schedule.
	go runPass(ctx)

	c := cron.New()
	_, err = c.AddFunc(cfg.CronSpec, func() {
		now := time.Now().In(markethours.NewYork)
		if !markethours.IsTradingDay(now) {
			log.Printf("[indexengine] skipping scheduled pass: %s", markethours.StatusString(now))
			return
		}
		runPass(ctx)
	})
	if err != nil {
		log.Fatalf("[indexengine] invalid CRON_SPEC %q: %v", cfg.CronSpec, err)
	}
	c.Start()
	log.Printf("[indexengine] scheduled passes: %q", cfg.CronSpec)

	// On-demand recompute requests from the gateway.
	if publisher != nil {
		go publisher.SubscribeRecompute(ctx, func(payload string) {
			from, to := parseRecompute(payload)
			if from == "" {
				from = lookbackFrom(cfg.LookbackDays)
			}
			log.Printf("[indexengine] recompute requested: from=%q to=%q", from, to)
			dates, err := store.ObservationDates(from, to)
			if err != nil {
				log.Printf("[indexengine] recompute: list dates failed: %v", err)
				return
			}
			computeDates(ctx, engine, store, publisher, notifier, prom, health, dates)
		})
	}

	<-sigCh
	log.Println("[indexengine] shutdown signal received, cleaning up...")
	c.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)

	if publisher != nil {
		publisher.Close()
	}
	log.Println("[indexengine] shutdown complete.")
}

// computeDates recomputes index records for the given dates, detects a
// constituent change at the tail of the series, and publishes the latest
// record.
func computeDates(ctx context.Context, engine *index.Engine, store *sqlitestore.Store,
	publisher *redisstore.Publisher, notifier notification.Notifier, prom *metrics.Metrics,
	health *metrics.HealthStatus, dates []string) {

	if len(dates) == 0 {
		log.Println("[indexengine] no observation dates to compute")
		return
	}

	start := time.Now()
	records, err := engine.ComputeRange(dates)
	if err != nil {
		log.Printf("[indexengine] compute failed: %v", err)
		return
	}
	prom.ComputeDur.Observe(time.Since(start).Seconds())
	prom.DatesComputed.Add(float64(len(records)))
	prom.EmptyDatesSkipped.Add(float64(len(dates) - len(records)))
	log.Printf("[indexengine] computed %d index records over %d dates in %v",
		len(records), len(dates), time.Since(start).Round(time.Millisecond))

	series, err := store.IndexSeries("", "")
	if err != nil || len(series) == 0 {
		if err != nil {
			log.Printf("[indexengine] read series failed: %v", err)
		}
		return
	}

	latest := series[len(series)-1]
	health.SetLastComputeDate(latest.Date)

	if change, err := index.ChangeAt(series, len(series)-1); err == nil && !change.None() {
		prom.CompositionChanges.Inc()
		log.Printf("[indexengine] composition change on %s: +%v -%v", change.Date, change.Added, change.Removed)
		notifier.Send(ctx, notification.CompositionChangeAlert(change))
	}

	if publisher != nil {
		pubStart := time.Now()
		if err := publisher.PublishRecord(ctx, &latest); err != nil {
			prom.PublishFailures.Inc()
			log.Printf("[indexengine] WARNING: publish failed: %v", err)
		} else {
			prom.RedisPublishDur.Observe(time.Since(pubStart).Seconds())
		}
	}
}

func buildNotifier(cfg *config.Config) notification.Notifier {
	notifiers := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.WebhookURL))
		log.Println("[indexengine] webhook alerts enabled")
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
		log.Println("[indexengine] telegram alerts enabled")
	}
	return notification.NewMulti(notifiers...)
}

// lookbackFrom returns the inclusive lower date bound for a compute pass,
// days calendar days back from today in New York time.
func lookbackFrom(days int) string {
	return time.Now().In(markethours.NewYork).AddDate(0, 0, -days).Format("2006-01-02")
}

// parseRecompute splits a "from,to" payload; an empty from falls back to
// the configured lookback window, an empty to is unbounded.
func parseRecompute(payload string) (from, to string) {
	parts := strings.SplitN(payload, ",", 2)
	from = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		to = strings.TrimSpace(parts[1])
	}
	return from, to
}
