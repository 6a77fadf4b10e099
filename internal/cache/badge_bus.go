package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"edufunkids/internal/logger"
	"edufunkids/internal/models"
)

// BadgeChannel is the pub/sub channel badge events are published on
const BadgeChannel = "edufunkids:badge-earned"

// BadgeEvent announces badges a user just earned
type BadgeEvent struct {
	UserID   string        `json:"userId"`
	Game     models.GameID `json:"game"`
	Badges   []string      `json:"badges"`
	EarnedAt time.Time     `json:"earnedAt"`
}

// BadgeBus publishes and forwards badge events over Redis pub/sub
type BadgeBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewBadgeBus creates a bus on BadgeChannel
func NewBadgeBus(rdb *goredis.Client, log *logger.Logger) *BadgeBus {
	return &BadgeBus{
		log:     log.With("service", "BadgeBus"),
		rdb:     rdb,
		channel: BadgeChannel,
	}
}

func (b *BadgeBus) Publish(ctx context.Context, event BadgeEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("badge bus not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and calls onEvent for each event
// until ctx is cancelled
func (b *BadgeBus) StartForwarder(ctx context.Context, onEvent func(BadgeEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("badge bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var event BadgeEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.log.Warn("bad badge event payload", "error", err)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}
