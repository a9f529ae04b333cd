package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/tanyajawab/internal/service"
)

// stubTaskService returns a canned report or error.
type stubTaskService struct {
	service.TaskService
	report *service.ResetReport
	err    error
}

func (s *stubTaskService) ResetPeriod(context.Context, string, time.Time) (*service.ResetReport, error) {
	return s.report, s.err
}

// stubStreakService returns a canned report or error.
type stubStreakService struct {
	service.StreakService
	report *service.StreakReport
	err    error
}

func (s *stubStreakService) RunBatch(context.Context, time.Time) (*service.StreakReport, error) {
	return s.report, s.err
}

func TestTaskResetJobNames(t *testing.T) {
	daily := NewDailyTaskResetJob(nil, "0 0 * * *", time.Minute)
	if daily.Name() != "daily_task_reset" {
		t.Fatalf("daily name = %q", daily.Name())
	}
	if daily.Schedule() != "0 0 * * *" {
		t.Fatalf("daily schedule = %q", daily.Schedule())
	}

	weekly := NewWeeklyTaskResetJob(nil, "0 0 * * 1", time.Minute)
	if weekly.Name() != "weekly_task_reset" {
		t.Fatalf("weekly name = %q", weekly.Name())
	}
}

func TestTaskResetJobSucceedsOnCleanRun(t *testing.T) {
	job := NewDailyTaskResetJob(&stubTaskService{
		report: &service.ResetReport{Frequency: "daily", Reset: 3, Assigned: 5},
	}, "0 0 * * *", time.Minute)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
}

func TestTaskResetJobFailsWhenUsersFailed(t *testing.T) {
	job := NewDailyTaskResetJob(&stubTaskService{
		report: &service.ResetReport{Frequency: "daily", Reset: 3, Assigned: 5, Failed: 2},
	}, "0 0 * * *", time.Minute)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("Run should fail when the report counts failed users")
	}
}

func TestTaskResetJobPropagatesRunError(t *testing.T) {
	wantErr := errors.New("database down")
	job := NewDailyTaskResetJob(&stubTaskService{err: wantErr}, "0 0 * * *", time.Minute)

	if err := job.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestStreakCheckJobFailsWhenUsersFailed(t *testing.T) {
	job := NewStreakCheckJob(&stubStreakService{
		report: &service.StreakReport{Updated: 10, Failed: 1},
	}, "30 0 * * *", time.Minute)

	if job.Name() != "streak_check" {
		t.Fatalf("name = %q", job.Name())
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("Run should fail when the report counts failed users")
	}
}

func TestStreakCheckJobSucceedsOnCleanRun(t *testing.T) {
	job := NewStreakCheckJob(&stubStreakService{
		report: &service.StreakReport{Updated: 10, Reset: 2, MilestonesReached: 1},
	}, "30 0 * * *", time.Minute)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
}
