package repository

import (
	"context"

	"anoa.com/tanyajawab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementLogRepository interface {
	Create(ctx context.Context, entry *model.AchievementLog) error
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.AchievementLog, error)
}

type achievementLogRepository struct {
	db *gorm.DB
}

func NewAchievementLogRepository(db *gorm.DB) AchievementLogRepository {
	return &achievementLogRepository{db: db}
}

func (r *achievementLogRepository) Create(ctx context.Context, entry *model.AchievementLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *achievementLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.AchievementLog, error) {
	var logs []model.AchievementLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
