package scheduler

import (
	"context"
	"errors"
	"testing"
)

type fakeJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRunByName(t *testing.T) {
	s := New()
	job := &fakeJob{name: "nightly_cleanup", schedule: ""}
	s.Register(job)

	if err := s.RunByName(context.Background(), "nightly_cleanup"); err != nil {
		t.Fatalf("RunByName error: %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("runs = %d, want 1", job.runs)
	}
}

func TestRunByNamePropagatesJobError(t *testing.T) {
	s := New()
	wantErr := errors.New("boom")
	s.Register(&fakeJob{name: "flaky", err: wantErr})

	if err := s.RunByName(context.Background(), "flaky"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestRunByNameUnknownJob(t *testing.T) {
	s := New()
	if err := s.RunByName(context.Background(), "missing"); err != nil {
		t.Fatalf("unknown job should be a soft no-op, got %v", err)
	}
}

func TestRegisteredJobs(t *testing.T) {
	s := New()
	s.Register(&fakeJob{name: "a", schedule: "0 0 * * *"})
	s.Register(&fakeJob{name: "b"})

	names := s.RegisteredJobs()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("registered jobs = %v, want [a b]", names)
	}
}
