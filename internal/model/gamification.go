package model

import (
	"time"

	"github.com/google/uuid"
)

// Level tiers. The ladder is seeded once and read-only afterwards.
const (
	TierBeginner     = "beginner"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
	TierExpert       = "expert"
	TierLegend       = "legend"
)

type Level struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	XpRequired int       `gorm:"uniqueIndex;not null" json:"xp_required"`
	Tier       string    `gorm:"size:20;not null" json:"tier"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// XpLog is the append-only XP ledger. Rows are never updated or deleted;
// users.xp_total must always equal the sum of a user's xp_amount values.
type XpLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_xp_user_date,priority:1;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	EventType string    `gorm:"size:50;not null" json:"event_type"` // 'question_created', 'answer_verified', ...
	XpAmount  int       `gorm:"not null" json:"xp_amount"`
	Metadata  string    `gorm:"type:text" json:"metadata"` // marshalled JSON payload
	CreatedAt time.Time `gorm:"index:idx_xp_user_date,priority:2" json:"created_at"`
}

// Badge types
const (
	BadgeTypeParticipation = "participation"
	BadgeTypeConsistency   = "consistency"
	BadgeTypeQuality       = "quality"
	BadgeTypeContribution  = "contribution"
	BadgeTypeRare          = "rare"
	BadgeTypeEvent         = "event"
)

type Badge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	XpReward  int       `gorm:"not null;default:0" json:"xp_reward"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge is created exactly once per (user, badge). The composite unique
// index is the authoritative idempotency guard for badge granting.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_badge;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	BadgeID   uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_id"`
	Badge     Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
}

// Task frequencies
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Frequency string    `gorm:"size:10;not null" json:"frequency"` // 'daily' | 'weekly'
	XpReward  int       `gorm:"not null;default:0" json:"xp_reward"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserTask statuses
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

type UserTask struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index:idx_user_task,priority:1;not null" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
	TaskID      uint       `gorm:"index:idx_user_task,priority:2;not null" json:"task_id"`
	Task        Task       `gorm:"foreignKey:TaskID" json:"task"`
	Status      string     `gorm:"size:10;not null;default:pending" json:"status"`
	AssignedAt  time.Time  `gorm:"not null" json:"assigned_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AchievementLog is the audit trail written by the achievement event bus,
// one row per dispatched event.
type AchievementLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Type      string    `gorm:"size:30;not null" json:"type"` // 'xp_gained', 'level_up', 'badge_unlocked', 'task_completed', 'answer_verified'
	Metadata  string    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
