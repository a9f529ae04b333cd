package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/testutil"
	"gorm.io/gorm"
)

func createTask(t *testing.T, db *gorm.DB, title, frequency string) *model.Task {
	t.Helper()
	task := &model.Task{Title: title, Frequency: frequency, XpReward: 5, IsActive: true}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestFindStalePendingFiltersByPeriodAndFrequency(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := createUser(t, db, "liam")
	daily := createTask(t, db, "Ask 1 Question", model.FrequencyDaily)
	weekly := createTask(t, db, "Earn 100 XP", model.FrequencyWeekly)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	periodStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	rows := []model.UserTask{
		// Stale daily pending row: should be found.
		{UserID: user.ID, TaskID: daily.ID, Status: model.TaskStatusPending, AssignedAt: yesterday},
		// Weekly row, wrong frequency for this query.
		{UserID: user.ID, TaskID: weekly.ID, Status: model.TaskStatusPending, AssignedAt: yesterday},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("create user task: %v", err)
		}
	}
	// A completed stale row must not be carried forward.
	completedAt := yesterday.Add(time.Hour)
	if err := db.Create(&model.UserTask{
		UserID: user.ID, TaskID: daily.ID, Status: model.TaskStatusCompleted,
		AssignedAt: yesterday.Add(-24 * time.Hour), CompletedAt: &completedAt,
	}).Error; err != nil {
		t.Fatalf("create completed task: %v", err)
	}

	stale, err := repo.FindStalePending(ctx, user.ID, model.FrequencyDaily, periodStart)
	if err != nil {
		t.Fatalf("FindStalePending error: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != rows[0].ID {
		t.Fatalf("stale = %+v, want only the pending daily row", stale)
	}

	// Once advanced into the current period it is no longer stale.
	if err := repo.AdvanceAssignedAt(ctx, rows[0].ID, today); err != nil {
		t.Fatalf("AdvanceAssignedAt error: %v", err)
	}
	stale, err = repo.FindStalePending(ctx, user.ID, model.FrequencyDaily, periodStart)
	if err != nil {
		t.Fatalf("second FindStalePending error: %v", err)
	}
	if len(stale) != 0 {
		t.Fatalf("stale after advance = %+v, want none", stale)
	}
}

func TestMarkCompletedOnlyTouchesPending(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := createUser(t, db, "mona")
	task := createTask(t, db, "Answer 1 Question", model.FrequencyDaily)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	assignedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	row := model.UserTask{UserID: user.ID, TaskID: task.ID, Status: model.TaskStatusPending, AssignedAt: assignedAt}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create user task: %v", err)
	}

	first := assignedAt.Add(2 * time.Hour)
	completed, err := repo.MarkCompleted(ctx, row.ID, first)
	if err != nil {
		t.Fatalf("MarkCompleted error: %v", err)
	}
	if !completed {
		t.Fatal("first MarkCompleted reported no row completed")
	}
	// A second completion is guarded by the status filter and changes nothing.
	completed, err = repo.MarkCompleted(ctx, row.ID, first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second MarkCompleted error: %v", err)
	}
	if completed {
		t.Fatal("second MarkCompleted reported a row completed")
	}

	var fresh model.UserTask
	if err := db.First(&fresh, row.ID).Error; err != nil {
		t.Fatalf("reload row: %v", err)
	}
	if fresh.Status != model.TaskStatusCompleted {
		t.Fatalf("status = %s, want completed", fresh.Status)
	}
	if fresh.CompletedAt == nil || !fresh.CompletedAt.Equal(first) {
		t.Fatalf("completed_at = %v, want %v", fresh.CompletedAt, first)
	}
}
