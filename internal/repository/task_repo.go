package repository

import (
	"context"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	FindActiveByFrequency(ctx context.Context, frequency string) ([]model.Task, error)
	FindActiveByTitle(ctx context.Context, title string) (*model.Task, error)
	FindByID(ctx context.Context, id uint) (*model.Task, error)

	// FindPendingInPeriod returns the pending assignment for (user, task) whose
	// assigned_at falls at or after periodStart, gorm.ErrRecordNotFound otherwise.
	FindPendingInPeriod(ctx context.Context, userID uuid.UUID, taskID uint, periodStart time.Time) (*model.UserTask, error)
	FindStalePending(ctx context.Context, userID uuid.UUID, frequency string, periodStart time.Time) ([]model.UserTask, error)
	CreateUserTask(ctx context.Context, userTask *model.UserTask) error
	AdvanceAssignedAt(ctx context.Context, userTaskID uint, now time.Time) error
	// MarkCompleted flips a pending assignment to completed. Returns false
	// when the row was no longer pending, which makes the status filter the
	// authoritative completion guard.
	MarkCompleted(ctx context.Context, userTaskID uint, now time.Time) (bool, error)
	FindUserTasks(ctx context.Context, userID uuid.UUID, frequency string, periodStart time.Time) ([]model.UserTask, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) FindActiveByFrequency(ctx context.Context, frequency string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("frequency = ? AND is_active = ?", frequency, true).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindActiveByTitle(ctx context.Context, title string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("title = ? AND is_active = ?", title, true).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindPendingInPeriod(ctx context.Context, userID uuid.UUID, taskID uint, periodStart time.Time) (*model.UserTask, error) {
	var userTask model.UserTask
	if err := r.db.WithContext(ctx).
		Preload("Task").
		Where("user_id = ? AND task_id = ? AND status = ? AND assigned_at >= ?",
			userID, taskID, model.TaskStatusPending, periodStart).
		First(&userTask).Error; err != nil {
		return nil, err
	}
	return &userTask, nil
}

func (r *taskRepository) FindStalePending(ctx context.Context, userID uuid.UUID, frequency string, periodStart time.Time) ([]model.UserTask, error) {
	var stale []model.UserTask
	err := r.db.WithContext(ctx).
		Joins("JOIN tasks ON tasks.id = user_tasks.task_id").
		Where("user_tasks.user_id = ? AND tasks.frequency = ? AND user_tasks.status = ? AND user_tasks.assigned_at < ?",
			userID, frequency, model.TaskStatusPending, periodStart).
		Find(&stale).Error
	return stale, err
}

func (r *taskRepository) CreateUserTask(ctx context.Context, userTask *model.UserTask) error {
	return r.db.WithContext(ctx).Create(userTask).Error
}

func (r *taskRepository) AdvanceAssignedAt(ctx context.Context, userTaskID uint, now time.Time) error {
	return r.db.WithContext(ctx).Model(&model.UserTask{}).
		Where("id = ?", userTaskID).
		Update("assigned_at", now).Error
}

func (r *taskRepository) MarkCompleted(ctx context.Context, userTaskID uint, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.UserTask{}).
		Where("id = ? AND status = ?", userTaskID, model.TaskStatusPending).
		Updates(map[string]interface{}{
			"status":       model.TaskStatusCompleted,
			"completed_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *taskRepository) FindUserTasks(ctx context.Context, userID uuid.UUID, frequency string, periodStart time.Time) ([]model.UserTask, error) {
	var userTasks []model.UserTask
	err := r.db.WithContext(ctx).
		Preload("Task").
		Joins("JOIN tasks ON tasks.id = user_tasks.task_id").
		Where("user_tasks.user_id = ? AND tasks.frequency = ? AND user_tasks.assigned_at >= ?",
			userID, frequency, periodStart).
		Order("user_tasks.task_id ASC").
		Find(&userTasks).Error
	return userTasks, err
}
