package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"totals-tracker/internal/domain/opportunities"
	"totals-tracker/internal/metrics"
)

const (
	channelRedis          = "redis"
	DefaultRedisChannel   = "totals:opportunities"
	defaultRedisOpTimeout = 2 * time.Second
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher mirrors each snapshot onto a Redis pub/sub channel so other
// processes can follow the dashboard feed.
type RedisPublisher struct {
	client  publisher
	closer  func() error
	channel string
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewRedisPublisher connects to the Redis URL (redis://host:port/db).
func NewRedisPublisher(url, channel string, recorder *metrics.Recorder) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	return newRedisPublisher(rdb, rdb.Close, channel, recorder), nil
}

func newRedisPublisher(client publisher, closer func() error, channel string, recorder *metrics.Recorder) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{
		client:  client,
		closer:  closer,
		channel: channel,
		metrics: recorder,
		now:     time.Now,
	}
}

// Channel returns the pub/sub channel name.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Broadcast publishes the snapshot envelope.
func (p *RedisPublisher) Broadcast(ctx context.Context, snapshot []opportunities.Opportunity) error {
	err := p.publish(ctx, snapshot)
	p.metrics.RecordDelivery(channelRedis, err)
	return err
}

func (p *RedisPublisher) publish(ctx context.Context, snapshot []opportunities.Opportunity) error {
	msg, err := encodeSnapshot(snapshot, p.now())
	if err != nil {
		return fmt.Errorf("encode redis snapshot: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultRedisOpTimeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, msg).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
