package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/tanyajawab/internal/service"
)

// StreakCheckJob re-evaluates every active user's login streak and raises
// streak milestones.
type StreakCheckJob struct {
	streakService service.StreakService
	schedule      string
	timeout       time.Duration
}

func NewStreakCheckJob(streakService service.StreakService, schedule string, timeout time.Duration) *StreakCheckJob {
	return &StreakCheckJob{
		streakService: streakService,
		schedule:      schedule,
		timeout:       timeout,
	}
}

func (j *StreakCheckJob) Name() string {
	return "streak_check"
}

func (j *StreakCheckJob) Schedule() string {
	return j.schedule
}

func (j *StreakCheckJob) Run(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report, err := j.streakService.RunBatch(ctx, time.Now())
	if err != nil {
		return err
	}

	log.Printf("🔥 [%s] updated=%d reset=%d milestones=%d failed=%d duration=%s",
		j.Name(), report.Updated, report.Reset, report.MilestonesReached, report.Failed, report.Duration.Round(time.Millisecond))

	if report.Failed > 0 {
		return fmt.Errorf("%d users failed during streak check", report.Failed)
	}
	return nil
}
