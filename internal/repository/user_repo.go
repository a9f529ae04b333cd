package repository

import (
	"context"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateLevelID(ctx context.Context, userID uuid.UUID, levelID uint) error
	UpdateStreak(ctx context.Context, userID uuid.UUID, streakDays int) error
	TouchLastActive(ctx context.Context, userID uuid.UUID, at time.Time) error
	FindAllIDs(ctx context.Context) ([]uuid.UUID, error)
	FindIDsWithLastActive(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Level").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) UpdateLevelID(ctx context.Context, userID uuid.UUID, levelID uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("level_id", levelID).Error
}

func (r *userRepository) UpdateStreak(ctx context.Context, userID uuid.UUID, streakDays int) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("streak_days", streakDays).Error
}

func (r *userRepository) TouchLastActive(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_active_at", at).Error
}

func (r *userRepository) FindAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindIDsWithLastActive returns the streak-eligible population: every user
// with a recorded last_active_at. Only the fields the streak batch needs.
func (r *userRepository) FindIDsWithLastActive(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("id", "streak_days", "last_active_at").
		Where("last_active_at IS NOT NULL").
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
