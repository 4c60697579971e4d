// Package redis publishes freshly generated snapshots to Redis so external
// consumers can follow the feed without connecting to this process. It is
// an outward push path only: the in-process cache never reads it back.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"cse-market-data/internal/model"
)

const (
	latestKey     = "snapshot:latest"
	pubsubChannel = "pub:snapshot"

	defaultLatestTTL = 30 * time.Minute
	publishTimeout   = 3 * time.Second
)

// PublisherConfig configures the Redis publisher.
type PublisherConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	// LatestTTL bounds how long snapshot:latest outlives the last
	// regeneration. Zero means defaultLatestTTL.
	LatestTTL time.Duration
}

// Publisher writes each snapshot to a latest-value key and a PubSub channel.
type Publisher struct {
	client *goredis.Client
	ttl    time.Duration
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.LatestTTL
	if ttl <= 0 {
		ttl = defaultLatestTTL
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client, ttl: ttl}, nil
}

// Publish writes snap as SET snapshot:latest + PUBLISH pub:snapshot in one
// pipeline. Failures are logged and swallowed: Redis being down must never
// affect snapshot generation or local readers.
func (p *Publisher) Publish(snap *model.Snapshot) {
	data := snap.JSON()
	if data == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	pipe := p.client.Pipeline()
	pipe.Set(ctx, latestKey, data, p.ttl)
	pipe.Publish(ctx, pubsubChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[redis] snapshot publish pipeline error: %v", err)
	}
}

// Close releases the client connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
