package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Achievement event kinds
const (
	TypeXpGained       = "xp_gained"
	TypeLevelUp        = "level_up"
	TypeBadgeUnlocked  = "badge_unlocked"
	TypeTaskCompleted  = "task_completed"
	TypeAnswerVerified = "answer_verified"
)

// AchievementEvent is one user-visible state change produced by the
// gamification engine.
type AchievementEvent struct {
	UserID     uuid.UUID              `json:"user_id"`
	Type       string                 `json:"type"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher is what the services depend on. Publish must never block the
// mutation path that produced the event.
type Publisher interface {
	Publish(evt AchievementEvent)
}

// Consumer is one independent side-effect sink behind the bus.
type Consumer interface {
	Name() string
	Handle(ctx context.Context, evt AchievementEvent) error
}

// NopPublisher discards every event. Used in tests and as a safe default.
type NopPublisher struct{}

func (NopPublisher) Publish(AchievementEvent) {}
