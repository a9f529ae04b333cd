package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UserChannel is the Redis pub/sub channel carrying a user's live
// achievement feed. The websocket handler subscribes to the same name.
func UserChannel(userID fmt.Stringer) string {
	return fmt.Sprintf("user_achievements:%s", userID.String())
}

// RealtimeConsumer pushes each event to the acting user's live session via
// Redis pub/sub.
type RealtimeConsumer struct {
	redisClient *redis.Client
}

func NewRealtimeConsumer(redisClient *redis.Client) *RealtimeConsumer {
	return &RealtimeConsumer{redisClient: redisClient}
}

func (c *RealtimeConsumer) Name() string {
	return "realtime_push"
}

func (c *RealtimeConsumer) Handle(ctx context.Context, evt AchievementEvent) error {
	if c.redisClient == nil {
		return nil
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return c.redisClient.Publish(ctx, UserChannel(evt.UserID), payload).Err()
}
