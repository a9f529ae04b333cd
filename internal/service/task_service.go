package service

import (
	"context"
	"errors"
	"log"
	"time"

	"anoa.com/tanyajawab/internal/event"
	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/repository"
	"anoa.com/tanyajawab/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResetReport summarizes one ResetPeriod run.
type ResetReport struct {
	Frequency string        `json:"frequency"`
	Reset     int           `json:"reset"`
	Assigned  int           `json:"assigned"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

type TaskService interface {
	// AssignIfMissing creates a pending assignment for the current period
	// unless one already exists. Idempotent.
	AssignIfMissing(ctx context.Context, userID uuid.UUID, task *model.Task, now time.Time) (*model.UserTask, bool, error)
	// GenerateForUser assigns every active task of the frequency and returns
	// the user's current-period task list.
	GenerateForUser(ctx context.Context, userID uuid.UUID, frequency string, now time.Time) ([]model.UserTask, error)
	// Complete marks the pending assignment completed, grants the task's XP
	// reward and publishes a task-completed event. Fails with
	// ErrTaskAlreadyCompleted when nothing is pending for the pair.
	Complete(ctx context.Context, taskID uint, userID uuid.UUID, now time.Time) (*model.UserTask, error)
	// CompleteByTitle completes speculatively: a missing task or missing
	// pending assignment returns (nil, nil) so callers can attempt it after
	// every relevant action without error handling.
	CompleteByTitle(ctx context.Context, title string, userID uuid.UUID, now time.Time) (*model.UserTask, error)
	// ResetPeriod advances stale pending assignments into the current period
	// and fills in missing ones, per user, converging on re-run.
	ResetPeriod(ctx context.Context, frequency string, now time.Time) (*ResetReport, error)
}

type taskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	xpService XpService
	publisher event.Publisher
	locks     *userLocks
}

func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, xpService XpService, publisher event.Publisher) TaskService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &taskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		xpService: xpService,
		publisher: publisher,
		locks:     newUserLocks(),
	}
}

// periodStart returns the start of the current period: midnight for daily
// tasks, Monday midnight (ISO week) for weekly ones.
func periodStart(frequency string, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if frequency != model.FrequencyWeekly {
		return day
	}

	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started 6 days earlier
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func (s *taskService) AssignIfMissing(ctx context.Context, userID uuid.UUID, task *model.Task, now time.Time) (*model.UserTask, bool, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.assignIfMissing(ctx, userID, task, now)
}

// assignIfMissing must be called with the user's lock held: the check-then-
// insert has no unique constraint behind it.
func (s *taskService) assignIfMissing(ctx context.Context, userID uuid.UUID, task *model.Task, now time.Time) (*model.UserTask, bool, error) {
	start := periodStart(task.Frequency, now)

	existing, err := s.taskRepo.FindPendingInPeriod(ctx, userID, task.ID, start)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	userTask := &model.UserTask{
		UserID:     userID,
		TaskID:     task.ID,
		Status:     model.TaskStatusPending,
		AssignedAt: now,
	}
	if err := s.taskRepo.CreateUserTask(ctx, userTask); err != nil {
		return nil, false, err
	}
	userTask.Task = *task

	return userTask, true, nil
}

func (s *taskService) GenerateForUser(ctx context.Context, userID uuid.UUID, frequency string, now time.Time) ([]model.UserTask, error) {
	tasks, err := s.taskRepo.FindActiveByFrequency(ctx, frequency)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	for i := range tasks {
		if _, _, err := s.assignIfMissing(ctx, userID, &tasks[i], now); err != nil {
			return nil, err
		}
	}

	return s.taskRepo.FindUserTasks(ctx, userID, frequency, periodStart(frequency, now))
}

func (s *taskService) Complete(ctx context.Context, taskID uint, userID uuid.UUID, now time.Time) (*model.UserTask, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return s.complete(ctx, task, userID, now)
}

func (s *taskService) CompleteByTitle(ctx context.Context, title string, userID uuid.UUID, now time.Time) (*model.UserTask, error) {
	task, err := s.taskRepo.FindActiveByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No such task configured, nothing to complete.
			return nil, nil
		}
		return nil, err
	}

	userTask, err := s.complete(ctx, task, userID, now)
	if errors.Is(err, apperror.ErrTaskAlreadyCompleted) {
		// Speculative completion, already done or never assigned.
		return nil, nil
	}
	return userTask, err
}

// complete serializes per user so one pending row pays out once even under
// concurrent completion attempts.
func (s *taskService) complete(ctx context.Context, task *model.Task, userID uuid.UUID, now time.Time) (*model.UserTask, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	pending, err := s.taskRepo.FindPendingInPeriod(ctx, userID, task.ID, periodStart(task.Frequency, now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrTaskAlreadyCompleted
		}
		return nil, err
	}

	completed, err := s.taskRepo.MarkCompleted(ctx, pending.ID, now)
	if err != nil {
		return nil, err
	}
	if !completed {
		// Row flipped between the read and the update; someone else paid out.
		return nil, apperror.ErrTaskAlreadyCompleted
	}
	pending.Status = model.TaskStatusCompleted
	pending.CompletedAt = &now
	pending.Task = *task

	if task.XpReward > 0 {
		eventType := EventDailyTaskCompleted
		if task.Frequency == model.FrequencyWeekly {
			eventType = EventWeeklyTaskCompleted
		}
		meta := map[string]interface{}{"task_title": task.Title}
		if _, _, err := s.xpService.GrantAmount(ctx, userID, eventType, task.XpReward, meta, now); err != nil {
			log.Printf("❌ failed to grant task reward XP: user_id=%s task=%q err=%v", userID, task.Title, err)
		}
	}

	s.publisher.Publish(event.AchievementEvent{
		UserID:     userID,
		Type:       event.TypeTaskCompleted,
		OccurredAt: now,
		Metadata: map[string]interface{}{
			"task_title": task.Title,
			"frequency":  task.Frequency,
			"xp_reward":  task.XpReward,
		},
	})

	return pending, nil
}

func (s *taskService) ResetPeriod(ctx context.Context, frequency string, now time.Time) (*ResetReport, error) {
	started := time.Now()
	report := &ResetReport{Frequency: frequency}

	tasks, err := s.taskRepo.FindActiveByFrequency(ctx, frequency)
	if err != nil {
		return nil, err
	}

	userIDs, err := s.userRepo.FindAllIDs(ctx)
	if err != nil {
		return nil, err
	}

	start := periodStart(frequency, now)

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(started)
			return report, err
		}

		reset, assigned, err := s.resetForUser(ctx, userID, tasks, frequency, start, now)
		if err != nil {
			report.Failed++
			log.Printf("❌ task reset failed for user %s: %v", userID, err)
			continue
		}
		report.Reset += reset
		report.Assigned += assigned
	}

	report.Duration = time.Since(started)
	return report, nil
}

// resetForUser is one user's unit of work: carry stale pending rows into the
// current period, then fill in missing assignments. A failure here only
// affects this user.
func (s *taskService) resetForUser(ctx context.Context, userID uuid.UUID, tasks []model.Task, frequency string, start, now time.Time) (int, int, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	stale, err := s.taskRepo.FindStalePending(ctx, userID, frequency, start)
	if err != nil {
		return 0, 0, err
	}

	reset := 0
	for _, userTask := range stale {
		if err := s.taskRepo.AdvanceAssignedAt(ctx, userTask.ID, now); err != nil {
			return reset, 0, err
		}
		reset++
	}

	assigned := 0
	for i := range tasks {
		_, created, err := s.assignIfMissing(ctx, userID, &tasks[i], now)
		if err != nil {
			return reset, assigned, err
		}
		if created {
			assigned++
		}
	}

	return reset, assigned, nil
}
