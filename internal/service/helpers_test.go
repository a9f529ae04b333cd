package service

import (
	"sync"
	"testing"
	"time"

	"anoa.com/tanyajawab/internal/event"
	"anoa.com/tanyajawab/internal/model"
	"gorm.io/gorm"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []event.AchievementEvent
}

func (p *capturePublisher) Publish(evt event.AchievementEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturePublisher) countByType(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, evt := range p.events {
		if evt.Type == eventType {
			n++
		}
	}
	return n
}

func seedLadder(t *testing.T, db *gorm.DB) {
	t.Helper()
	ladder := []model.Level{
		{Name: "Newcomer", XpRequired: 0, Tier: model.TierBeginner},
		{Name: "Contributor", XpRequired: 100, Tier: model.TierBeginner},
		{Name: "Regular", XpRequired: 500, Tier: model.TierIntermediate},
		{Name: "Expert", XpRequired: 3000, Tier: model.TierAdvanced},
	}
	for i := range ladder {
		if err := db.Create(&ladder[i]).Error; err != nil {
			t.Fatalf("seed ladder: %v", err)
		}
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string, xpTotal int) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@test.local",
		PasswordHash: "x",
		XpTotal:      xpTotal,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedBadge(t *testing.T, db *gorm.DB, slug string, xpReward int) *model.Badge {
	t.Helper()
	badge := &model.Badge{
		Slug:     slug,
		Name:     slug,
		Type:     model.BadgeTypeContribution,
		XpReward: xpReward,
		IsActive: true,
	}
	if err := db.Create(badge).Error; err != nil {
		t.Fatalf("seed badge: %v", err)
	}
	return badge
}

func seedTask(t *testing.T, db *gorm.DB, title, frequency string, xpReward int) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:     title,
		Frequency: frequency,
		XpReward:  xpReward,
		IsActive:  true,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func atNoon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
