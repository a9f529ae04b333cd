package repository

import (
	"context"

	"anoa.com/tanyajawab/internal/model"
	"gorm.io/gorm"
)

type LevelRepository interface {
	// FindHighestFor returns the highest-threshold level whose xp_required
	// does not exceed xpTotal, gorm.ErrRecordNotFound when the ladder has no
	// entry at or below that total.
	FindHighestFor(ctx context.Context, xpTotal int) (*model.Level, error)
	FindNextAfter(ctx context.Context, xpTotal int) (*model.Level, error)
	FindByID(ctx context.Context, id uint) (*model.Level, error)
	FindAll(ctx context.Context) ([]model.Level, error)
}

type levelRepository struct {
	db *gorm.DB
}

func NewLevelRepository(db *gorm.DB) LevelRepository {
	return &levelRepository{db: db}
}

func (r *levelRepository) FindHighestFor(ctx context.Context, xpTotal int) (*model.Level, error) {
	var level model.Level
	if err := r.db.WithContext(ctx).
		Where("xp_required <= ?", xpTotal).
		Order("xp_required DESC").
		First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *levelRepository) FindNextAfter(ctx context.Context, xpTotal int) (*model.Level, error) {
	var level model.Level
	if err := r.db.WithContext(ctx).
		Where("xp_required > ?", xpTotal).
		Order("xp_required ASC").
		First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *levelRepository) FindByID(ctx context.Context, id uint) (*model.Level, error) {
	var level model.Level
	if err := r.db.WithContext(ctx).First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *levelRepository) FindAll(ctx context.Context) ([]model.Level, error) {
	var levels []model.Level
	if err := r.db.WithContext(ctx).Order("xp_required ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}
