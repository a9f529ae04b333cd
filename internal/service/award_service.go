package service

import (
	"context"
	"log"
	"time"

	"anoa.com/tanyajawab/internal/event"
	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/repository"
	"github.com/google/uuid"
)

// AwardResult is the structured outcome of one user action: the ledger
// entry plus every secondary state change it caused.
type AwardResult struct {
	XpLog          *model.XpLog     `json:"xp_log"`
	LevelChange    *LevelChange     `json:"level_change,omitempty"`
	BadgesUnlocked []model.Badge    `json:"badges_unlocked"`
	TasksCompleted []model.UserTask `json:"tasks_completed"`
}

type AwardService interface {
	// AwardAndProcess is the single entry point collaborators call when a
	// user does something XP-worthy. Only a failure of the XP grant itself
	// propagates; task and badge follow-ups are best-effort.
	AwardAndProcess(ctx context.Context, userID uuid.UUID, eventType string, metadata map[string]interface{}, now time.Time) (*AwardResult, error)
}

type awardService struct {
	xpService     XpService
	taskService   TaskService
	badgeService  BadgeService
	streakService StreakService
	userRepo      repository.UserRepository
	publisher     event.Publisher
}

func NewAwardService(xpService XpService, taskService TaskService, badgeService BadgeService, streakService StreakService, userRepo repository.UserRepository, publisher event.Publisher) AwardService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &awardService{
		xpService:     xpService,
		taskService:   taskService,
		badgeService:  badgeService,
		streakService: streakService,
		userRepo:      userRepo,
		publisher:     publisher,
	}
}

func (s *awardService) AwardAndProcess(ctx context.Context, userID uuid.UUID, eventType string, metadata map[string]interface{}, now time.Time) (*AwardResult, error) {
	before, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previousTotal := before.XpTotal

	xpLog, levelChange, err := s.xpService.Grant(ctx, userID, eventType, metadata, now)
	if err != nil {
		if xpLog == nil {
			return nil, err
		}
		// The ledger write committed and only the level recompute failed.
		// The grant is durable, so carry on with the follow-ups; the next
		// grant converges the level.
		log.Printf("❌ level recompute failed after grant: user_id=%s trigger=%s err=%v", userID, eventType, err)
	}

	result := &AwardResult{
		XpLog:          xpLog,
		LevelChange:    levelChange,
		BadgesUnlocked: []model.Badge{},
		TasksCompleted: []model.UserTask{},
	}

	// Streak continuation reads the last_active_at stored before this
	// action, so it has to run ahead of the touch below.
	streakBadges, err := s.streakService.RecordActivity(ctx, userID, now)
	if err != nil {
		log.Printf("❌ streak update failed: user_id=%s trigger=%s err=%v", userID, eventType, err)
	}
	result.BadgesUnlocked = append(result.BadgesUnlocked, streakBadges...)

	if err := s.userRepo.TouchLastActive(ctx, userID, now); err != nil {
		log.Printf("❌ failed to touch last_active_at: user_id=%s trigger=%s err=%v", userID, eventType, err)
	}

	// Opportunistic task completion for actions that map to a task title.
	if title, ok := taskTitleByEvent[eventType]; ok {
		completed, err := s.taskService.CompleteByTitle(ctx, title, userID, now)
		if err != nil {
			log.Printf("❌ task auto-completion failed: user_id=%s trigger=%s task=%q err=%v", userID, eventType, title, err)
		} else if completed != nil {
			result.TasksCompleted = append(result.TasksCompleted, *completed)
		}
	}

	// Badge triggers run on the post-increment state. Failures here never
	// undo the grant.
	after, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Printf("❌ failed to re-fetch user after grant: user_id=%s trigger=%s err=%v", userID, eventType, err)
		return result, nil
	}

	result.BadgesUnlocked = append(result.BadgesUnlocked,
		s.badgeService.EvaluateXpCrossing(ctx, userID, previousTotal, after.XpTotal, now)...)

	if after.Level != nil {
		result.BadgesUnlocked = append(result.BadgesUnlocked,
			s.badgeService.EvaluateTier(ctx, userID, after.Level.Tier, now)...)
	}

	if eventType == EventAnswerVerified {
		s.publisher.Publish(event.AchievementEvent{
			UserID:     userID,
			Type:       event.TypeAnswerVerified,
			OccurredAt: now,
			Metadata:   metadata,
		})
	}

	return result, nil
}
