package service

import (
	"context"
	"log"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/repository"
	"github.com/google/uuid"
)

// StreakReport summarizes one RunBatch pass over the population.
type StreakReport struct {
	Updated           int           `json:"updated"`
	Reset             int           `json:"reset"`
	MilestonesReached int           `json:"milestones_reached"`
	Failed            int           `json:"failed"`
	Duration          time.Duration `json:"duration"`
}

type StreakService interface {
	// RecordActivity advances the user's streak for a new action at now,
	// using the stored last_active_at from before the action touched it.
	// Calling it again for the same calendar day is a no-op, which is what
	// makes the once-per-day increment safe to attempt on every action.
	// Returns any streak-milestone badges the increment unlocked.
	RecordActivity(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Badge, error)
	// RunBatch re-evaluates every user with a recorded last_active_at.
	// Each user's persist-and-award is its own unit of work; one user's
	// failure is logged and counted without touching the rest.
	RunBatch(ctx context.Context, now time.Time) (*StreakReport, error)
}

type streakService struct {
	userRepo     repository.UserRepository
	badgeService BadgeService
	locks        *userLocks
}

func NewStreakService(userRepo repository.UserRepository, badgeService BadgeService) StreakService {
	return &streakService{
		userRepo:     userRepo,
		badgeService: badgeService,
		locks:        newUserLocks(),
	}
}

// daysBetween counts calendar-day boundaries between two instants, in the
// timezone of now.
func daysBetween(earlier, later time.Time) int {
	e := time.Date(earlier.Year(), earlier.Month(), earlier.Day(), 0, 0, 0, 0, later.Location())
	l := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, later.Location())
	return int(l.Sub(e).Hours() / 24)
}

// EvaluateStreak is the streak state function. It is pure: same inputs,
// same answer, no clock reads.
//
// Running the batch more than once on the same day is a no-op for users
// already counted: the "active yesterday, streak already > 0" branch
// intentionally does nothing so intra-day re-runs cannot double count.
func EvaluateStreak(lastActiveAt time.Time, currentStreak int, now time.Time) (newStreak int, reset bool) {
	days := daysBetween(lastActiveAt, now)

	switch {
	case days == 0 && currentStreak == 0:
		// Active today, streak starting fresh.
		return 1, false
	case days == 0:
		// Active today and already counted.
		return currentStreak, false
	case days == 1 && currentStreak == 0:
		// Lapsed streak recovering: yesterday's activity starts it at 1.
		return 1, false
	case days > 1:
		return 0, currentStreak > 0
	default:
		// Active yesterday with a running streak: already incremented on a
		// prior run for that day.
		return currentStreak, false
	}
}

// ContinueStreak is the activity-time counterpart of EvaluateStreak: it is
// applied when the user acts, with the last_active_at stored before this
// action. Also pure. Consecutive-day activity is what grows a streak, and
// growth only happens here; the nightly batch never increments past 1, so
// re-running it cannot double count a day.
func ContinueStreak(lastActiveAt *time.Time, currentStreak int, now time.Time) int {
	if lastActiveAt == nil {
		return 1
	}
	switch days := daysBetween(*lastActiveAt, now); {
	case days == 0 && currentStreak > 0:
		// Already counted today.
		return currentStreak
	case days == 1:
		return currentStreak + 1
	default:
		// First activity today, or back after a gap: a fresh streak.
		return 1
	}
}

func (s *streakService) RecordActivity(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Badge, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	newStreak := ContinueStreak(user.LastActiveAt, user.StreakDays, now)
	if newStreak == user.StreakDays {
		return nil, nil
	}

	var unlocked []model.Badge
	if newStreak > user.StreakDays {
		unlocked, _, err = s.badgeService.EvaluateStreakCrossing(ctx, userID, user.StreakDays, newStreak, now)
		if err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.UpdateStreak(ctx, userID, newStreak); err != nil {
		return unlocked, err
	}

	return unlocked, nil
}

func (s *streakService) RunBatch(ctx context.Context, now time.Time) (*StreakReport, error) {
	started := time.Now()
	report := &StreakReport{}

	users, err := s.userRepo.FindIDsWithLastActive(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(started)
			return report, err
		}

		updated, wasReset, milestones, err := s.evaluateUser(ctx, &users[i], now)
		if err != nil {
			report.Failed++
			log.Printf("❌ streak evaluation failed for user %s: %v", users[i].ID, err)
			continue
		}
		if updated {
			report.Updated++
		}
		if wasReset {
			report.Reset++
		}
		report.MilestonesReached += milestones
	}

	report.Duration = time.Since(started)
	return report, nil
}

func (s *streakService) evaluateUser(ctx context.Context, user *model.User, now time.Time) (updated, wasReset bool, milestones int, err error) {
	unlock := s.locks.Lock(user.ID)
	defer unlock()

	newStreak, reset := EvaluateStreak(*user.LastActiveAt, user.StreakDays, now)
	if newStreak == user.StreakDays {
		return false, false, 0, nil
	}

	// Milestone awards run before the streak value is persisted: if they
	// fail, the user stays on the old value and the whole unit is retried
	// on the next run. The badge unique index keeps the retry idempotent.
	if newStreak > user.StreakDays {
		_, crossed, err := s.badgeService.EvaluateStreakCrossing(ctx, user.ID, user.StreakDays, newStreak, now)
		if err != nil {
			return false, false, 0, err
		}
		milestones = crossed
	}

	if err := s.userRepo.UpdateStreak(ctx, user.ID, newStreak); err != nil {
		return false, false, 0, err
	}

	return true, reset, milestones, nil
}
