package event

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// EffectsQueueKey is the Redis list the UI layer drains for popup and
// animation triggers.
const EffectsQueueKey = "achievement_effects"

// EffectsConsumer enqueues deferred UI effects (level-up popups, badge
// animations) for asynchronous delivery.
type EffectsConsumer struct {
	redisClient *redis.Client
}

func NewEffectsConsumer(redisClient *redis.Client) *EffectsConsumer {
	return &EffectsConsumer{redisClient: redisClient}
}

func (c *EffectsConsumer) Name() string {
	return "deferred_effects"
}

func (c *EffectsConsumer) Handle(ctx context.Context, evt AchievementEvent) error {
	if c.redisClient == nil {
		return nil
	}

	// Only visual achievements get a deferred effect; plain XP gains would
	// flood the queue.
	switch evt.Type {
	case TypeLevelUp, TypeBadgeUnlocked, TypeTaskCompleted:
	default:
		return nil
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return c.redisClient.LPush(ctx, EffectsQueueKey, payload).Err()
}
