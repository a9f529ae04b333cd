package repository

import (
	"context"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaderboardRepository interface {
	GetTopUsers(ctx context.Context, limit int) ([]model.User, error)
	// GetWeeklyXp sums ledger amounts for the given users over the last 7 days.
	GetWeeklyXp(ctx context.Context, userIDs []uuid.UUID, now time.Time) (map[uuid.UUID]int, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) GetTopUsers(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Level").
		Order("xp_total DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *leaderboardRepository) GetWeeklyXp(ctx context.Context, userIDs []uuid.UUID, now time.Time) (map[uuid.UUID]int, error) {
	weeklyStart := now.AddDate(0, 0, -7)

	type weeklyResult struct {
		UserID uuid.UUID
		Score  int
	}
	var results []weeklyResult
	err := r.db.WithContext(ctx).Model(&model.XpLog{}).
		Select("user_id, SUM(xp_amount) as score").
		Where("user_id IN ? AND created_at >= ?", userIDs, weeklyStart).
		Group("user_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	weekly := make(map[uuid.UUID]int, len(results))
	for _, res := range results {
		weekly[res.UserID] = res.Score
	}
	return weekly, nil
}
