package repository

import (
	"context"

	"anoa.com/tanyajawab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	FindBySlug(ctx context.Context, slug string) (*model.Badge, error)
	// InsertUserBadge relies on the (user_id, badge_id) unique index with an
	// ON CONFLICT DO NOTHING clause. Returns true when this call created the
	// row, false when the user already had the badge.
	InsertUserBadge(ctx context.Context, userBadge *model.UserBadge) (bool, error)
	FindUserBadges(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error)
	CountUserBadges(ctx context.Context, userID uuid.UUID) (int64, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) FindBySlug(ctx context.Context, slug string) (*model.Badge, error) {
	var badge model.Badge
	if err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *badgeRepository) InsertUserBadge(ctx context.Context, userBadge *model.UserBadge) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(userBadge)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *badgeRepository) FindUserBadges(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error) {
	var badges []model.UserBadge
	if err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *badgeRepository) CountUserBadges(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserBadge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
