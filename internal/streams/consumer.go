package streams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Consumer reads notification events from a Redis Stream through a consumer group
type Consumer struct {
	rdb          *redis.Client
	stream       string
	groupName    string
	consumerName string
	logger       *slog.Logger
}

// NewConsumer creates the consumer group if needed and returns a Consumer
func NewConsumer(ctx context.Context, redisURL, stream, consumerName string, logger *slog.Logger) (*Consumer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if stream == "" {
		stream = DefaultNotificationStream
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Read timeout must exceed the XReadGroup Block duration (5s)
	// to avoid spurious i/o timeout errors on idle streams.
	opts.ReadTimeout = 10 * time.Second

	client := redis.NewClient(opts)

	// "$" starts a new group at the end of the stream
	err = client.XGroupCreateMkStream(ctx, stream, GroupWatchers, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		client.Close()
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		rdb:          client,
		stream:       stream,
		groupName:    GroupWatchers,
		consumerName: consumerName,
		logger:       logger,
	}, nil
}

// Consume runs a blocking loop passing each event to handler until ctx is done.
// Events whose handler fails stay pending and are not acknowledged.
func (c *Consumer) Consume(ctx context.Context, handler func(NotificationEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupName,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Blocking reads return a timeout when no messages arrive
			// within the Block duration, which is normal.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			c.logger.Error("Failed to read from stream", "stream", c.stream, "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				event, err := DecodeEvent(message.Values)
				if err != nil {
					c.logger.Error("Invalid stream message", "message_id", message.ID, "error", err)
					continue
				}

				if err := handler(event); err != nil {
					c.logger.Error("Handler failed", "error", err, "id_notificacion", event.NotificationID)
					continue
				}

				if err := c.rdb.XAck(ctx, c.stream, c.groupName, message.ID).Err(); err != nil {
					c.logger.Error("Failed to ACK message", "error", err, "message_id", message.ID)
				}
			}
		}
	}
}

// Close closes the Redis client connection
func (c *Consumer) Close() error {
	return c.rdb.Close()
}

// DecodeEvent extracts the event from a stream message's values
func DecodeEvent(values map[string]interface{}) (NotificationEvent, error) {
	var event NotificationEvent
	payload, ok := values["payload"].(string)
	if !ok {
		return event, errors.New("missing payload field")
	}
	if version, ok := values["schema_version"].(string); ok && version != SchemaVersionV1 {
		return event, fmt.Errorf("unsupported schema version %q", version)
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
