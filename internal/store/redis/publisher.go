// Package redis publishes computed index records for downstream consumers:
// the latest record under a TTL'd key, an append-only stream of records, and
// a pub/sub channel the API gateway fans out over WebSocket.
//
// Redis is best-effort infrastructure here: SQLite is the system of record,
// so publish failures are logged and counted, never fatal to a pass.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"index-systemv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	// KeyLatest holds the most recent index record as JSON.
	KeyLatest = "index:latest"
	// StreamRecords is the append-only stream of computed records.
	StreamRecords = "index:records"
	// ChannelDaily carries newly computed records to gateway subscribers.
	ChannelDaily = "pub:index:daily"
	// ChannelRecompute carries admin recompute commands gateway -> engine.
	// Payload: "from,to" date range, or "" for the default lookback window.
	ChannelRecompute = "config:recompute"

	// ~8 years of daily records
	streamMaxLen    = 2000
	latestTTL       = 48 * time.Hour
	defaultPingWait = 5 * time.Second
)

// PublisherConfig configures the Redis publisher.
type PublisherConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher writes index records to Redis.
type Publisher struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// New creates a Publisher and pings the server.
func New(cfg PublisherConfig) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingWait)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client}, nil
}

// PublishRecord writes one computed record to the latest key, the record
// stream, and the daily pub/sub channel.
func (p *Publisher) PublishRecord(ctx context.Context, rec *model.IndexRecord) error {
	payload := rec.JSON()

	pipe := p.client.Pipeline()
	pipe.Set(ctx, KeyLatest, payload, latestTTL)
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: StreamRecords,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": payload},
	})
	pipe.Publish(ctx, ChannelDaily, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish record %s: %w", rec.Date, err)
	}
	return nil
}

// SubscribeRecompute listens for admin recompute commands and invokes fn
// with each payload. Blocks until ctx is cancelled.
func (p *Publisher) SubscribeRecompute(ctx context.Context, fn func(payload string)) {
	pubsub := p.client.Subscribe(ctx, ChannelRecompute)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fn(msg.Payload)
		}
	}
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
