package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/service"
)

// TaskResetJob carries pending daily or weekly assignments into the new
// period and assigns missing ones for the whole user population.
type TaskResetJob struct {
	taskService service.TaskService
	frequency   string
	schedule    string
	timeout     time.Duration
}

func NewDailyTaskResetJob(taskService service.TaskService, schedule string, timeout time.Duration) *TaskResetJob {
	return &TaskResetJob{
		taskService: taskService,
		frequency:   model.FrequencyDaily,
		schedule:    schedule,
		timeout:     timeout,
	}
}

func NewWeeklyTaskResetJob(taskService service.TaskService, schedule string, timeout time.Duration) *TaskResetJob {
	return &TaskResetJob{
		taskService: taskService,
		frequency:   model.FrequencyWeekly,
		schedule:    schedule,
		timeout:     timeout,
	}
}

func (j *TaskResetJob) Name() string {
	return fmt.Sprintf("%s_task_reset", j.frequency)
}

func (j *TaskResetJob) Schedule() string {
	return j.schedule
}

func (j *TaskResetJob) Run(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report, err := j.taskService.ResetPeriod(ctx, j.frequency, time.Now())
	if err != nil {
		return err
	}

	log.Printf("📋 [%s] reset=%d assigned=%d failed=%d duration=%s",
		j.Name(), report.Reset, report.Assigned, report.Failed, report.Duration.Round(time.Millisecond))

	if report.Failed > 0 {
		return fmt.Errorf("%d users failed during %s task reset", report.Failed, j.frequency)
	}
	return nil
}
