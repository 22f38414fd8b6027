package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NotificationsChannel carries admin notifications between API instances.
const NotificationsChannel = "admin-notifications"

// Publisher emits JSON events on a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, v any) error
}

// Emitter publishes events through Redis Pub/Sub.
type Emitter struct {
	conn *redis.Client
	log  *zap.Logger
}

func NewEmitter(conn *redis.Client, log *zap.Logger) *Emitter {
	return &Emitter{conn: conn, log: log}
}

func (e *Emitter) Publish(ctx context.Context, channel string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", channel, err)
	}
	if err := e.conn.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	e.log.Debug("event published", zap.String("channel", channel))
	return nil
}

// Subscribe delivers every payload on channel to handle until ctx is done.
func (e *Emitter) Subscribe(ctx context.Context, channel string, handle func([]byte)) error {
	sub := e.conn.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", channel, err)
	}
	e.log.Info("listening for events", zap.String("channel", channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handle([]byte(msg.Payload))
		}
	}
}

// Discard is a Publisher that drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) error { return nil }
