package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jimdaga/gestor/internal/models"
	"github.com/redis/go-redis/v9"
)

// Publisher publishes notification events to a Redis Stream
type Publisher struct {
	rdb    *redis.Client
	stream string
}

// NewPublisher creates a Publisher writing to stream
func NewPublisher(redisURL, stream string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if stream == "" {
		stream = DefaultNotificationStream
	}

	return &Publisher{rdb: redis.NewClient(opts), stream: stream}, nil
}

// PublishNotification appends a notification.created event to the stream
func (p *Publisher) PublishNotification(ctx context.Context, n models.Notification) error {
	values, err := eventValues(NewNotificationEvent(n), time.Now())
	if err != nil {
		return err
	}

	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		ID:     "*", // auto-generate ID
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}
	return nil
}

// Close closes the Redis client connection
func (p *Publisher) Close() error {
	return p.rdb.Close()
}

func eventValues(event NotificationEvent, now time.Time) (map[string]interface{}, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return map[string]interface{}{
		"payload":        string(payload),
		"published_at":   now.Unix(),
		"schema_version": SchemaVersionV1,
	}, nil
}
