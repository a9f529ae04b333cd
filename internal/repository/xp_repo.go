package repository

import (
	"context"

	"anoa.com/tanyajawab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type XpEventSummary struct {
	EventType string `json:"event_type"`
	Total     int    `json:"total"`
	Count     int64  `json:"count"`
}

type XpRepository interface {
	// AppendAndIncrement writes the ledger row and bumps users.xp_total in one
	// transaction, returning the post-increment total.
	AppendAndIncrement(ctx context.Context, entry *model.XpLog) (int, error)
	SumByUser(ctx context.Context, userID uuid.UUID) (int, error)
	SummaryByUser(ctx context.Context, userID uuid.UUID) ([]XpEventSummary, error)
	HistoryByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.XpLog, int64, error)
}

type xpRepository struct {
	db *gorm.DB
}

func NewXpRepository(db *gorm.DB) XpRepository {
	return &xpRepository{db: db}
}

func (r *xpRepository) AppendAndIncrement(ctx context.Context, entry *model.XpLog) (int, error) {
	var newTotal int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.User{}).
			Where("id = ?", entry.UserID).
			Update("xp_total", gorm.Expr("xp_total + ?", entry.XpAmount)).Error; err != nil {
			return err
		}

		// Read the post-increment total inside the same transaction so the
		// returned value cannot drift from the ledger.
		return tx.Model(&model.User{}).
			Where("id = ?", entry.UserID).
			Pluck("xp_total", &newTotal).Error
	})
	if err != nil {
		return 0, err
	}

	return newTotal, nil
}

func (r *xpRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&model.XpLog{}).
		Select("COALESCE(SUM(xp_amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

func (r *xpRepository) SummaryByUser(ctx context.Context, userID uuid.UUID) ([]XpEventSummary, error) {
	var summary []XpEventSummary
	err := r.db.WithContext(ctx).Model(&model.XpLog{}).
		Select("event_type, SUM(xp_amount) as total, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("event_type").
		Order("total DESC").
		Scan(&summary).Error
	return summary, err
}

func (r *xpRepository) HistoryByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.XpLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.XpLog{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.XpLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error

	return logs, total, err
}
