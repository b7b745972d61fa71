package events

import (
	"context"
	"encoding/json"
	"fmt"

	pollredis "live-poll/internal/redis"

	"go.uber.org/zap"
)

// RedisBus fans changes out over Redis pub/sub so every API instance
// sees writes made by the others.
type RedisBus struct {
	publisher  *pollredis.Publisher
	subscriber *pollredis.Subscriber
	logger     *zap.Logger
}

func NewRedisBus(publisher *pollredis.Publisher, subscriber *pollredis.Subscriber, logger *zap.Logger) *RedisBus {
	return &RedisBus{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
	}
}

func (b *RedisBus) Publish(ctx context.Context, change Change) error {
	if err := b.publisher.PublishJSON(ctx, ChannelFor(change.Type), change); err != nil {
		return fmt.Errorf("failed to publish %s: %w", change.Type, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	closeFn, err := b.subscriber.Subscribe(ctx, []string{ChannelPattern}, func(channel string, payload []byte) {
		if _, ok := TypeFromChannel(channel); !ok {
			return
		}
		var change Change
		if err := json.Unmarshal(payload, &change); err != nil {
			b.logger.Warn("dropping malformed change", zap.String("channel", channel), zap.Error(err))
			return
		}
		handler(change)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return newSubscription(closeFn), nil
}
