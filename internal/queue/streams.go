package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/redis/go-redis/v9"
)

type StreamsConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

// StreamsQueue implements Producer+Consumer backed by Redis Streams, for
// deployments where the worker runs in a separate process from the API.
type StreamsQueue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
}

func NewStreamsQueue(ctx context.Context, cfg StreamsConfig) (*StreamsQueue, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Stream == "" {
		cfg.Stream = "ai_tasks"
	}
	if cfg.Group == "" {
		cfg.Group = "ai_workers"
	}
	if cfg.Consumer == "" {
		cfg.Consumer = "api-1"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	queue := &StreamsQueue{
		client:   client,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: cfg.Consumer,
	}
	if err := queue.ensureGroup(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return queue, nil
}

func (q *StreamsQueue) Close() error {
	return q.client.Close()
}

func (q *StreamsQueue) ensureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

func (q *StreamsQueue) Enqueue(ctx context.Context, message domain.TaskMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode task message: %w", err)
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"task_id": message.TaskID,
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd task message: %w", err)
	}
	return nil
}

func (q *StreamsQueue) Consume(ctx context.Context, handler func(context.Context, domain.TaskMessage) error) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{q.stream, ">"},
			Count:    8,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("xreadgroup: %w", err)
		}

		for _, stream := range streams {
			for _, entry := range stream.Messages {
				message, decodeErr := decodeEntry(entry)
				if decodeErr == nil {
					_ = handler(ctx, message)
				}
				// Ack either way: a message that cannot be decoded will
				// never decode on re-delivery.
				_ = q.client.XAck(ctx, q.stream, q.group, entry.ID).Err()
			}
		}
	}
}

func decodeEntry(entry redis.XMessage) (domain.TaskMessage, error) {
	raw, ok := entry.Values["payload"].(string)
	if !ok {
		return domain.TaskMessage{}, errors.New("stream entry without payload")
	}
	var message domain.TaskMessage
	if err := json.Unmarshal([]byte(raw), &message); err != nil {
		return domain.TaskMessage{}, fmt.Errorf("decode task message: %w", err)
	}
	return message, nil
}
