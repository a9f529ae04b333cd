package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is one schedulable unit of background work. A non-empty Schedule is a
// standard cron spec; an empty one registers the job for on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler wires jobs onto a cron runner and exposes manual triggering.
type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)

	spec := job.Schedule()
	if spec == "" {
		log.Printf("📝 [%s] Registered as on-demand job (no schedule)", job.Name())
		return
	}

	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("🤖 [%s] Starting scheduled run...", job.Name())
		if err := job.Run(context.Background()); err != nil {
			log.Printf("❌ [%s] Run failed: %v", job.Name(), err)
		} else {
			log.Printf("✅ [%s] Run completed successfully", job.Name())
		}
	})

	if err != nil {
		log.Printf("⚠️ Failed to schedule job %s: %v", job.Name(), err)
	} else {
		log.Printf("📅 [%s] Scheduled with cron: %s", job.Name(), spec)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Job scheduler started with %d registered jobs", len(s.jobs))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("🛑 Job scheduler stopped")
}

// RunByName triggers one job manually. Returns the job's error so callers
// (admin endpoint, CLI) can report success or failure.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			log.Printf("🎯 [%s] Running on-demand...", name)
			return job.Run(ctx)
		}
	}
	log.Printf("⚠️ Job with name '%s' not found", name)
	return nil
}

func (s *Scheduler) RegisteredJobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
