package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/tanyajawab/internal/event"
	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge slug conventions. The catalog is seeded with these slugs; the
// trigger evaluation below derives them from thresholds and tiers.
func xpMilestoneSlug(threshold int) string {
	return fmt.Sprintf("xp-%d", threshold)
}

func streakMilestoneSlug(days int) string {
	return fmt.Sprintf("streak-%d", days)
}

func tierSlug(tier string) string {
	return fmt.Sprintf("tier-%s", tier)
}

type BadgeService interface {
	// CheckAndAward grants the badge once per user. Unknown or inactive slugs
	// return (nil, nil): the badge is simply not configured yet. Re-awarding
	// is a no-op guarded by the user_badges unique index, not a prior
	// existence check.
	CheckAndAward(ctx context.Context, userID uuid.UUID, slug string, now time.Time) (*model.Badge, error)
	// EvaluateXpCrossing awards every XP-milestone badge whose threshold was
	// strictly crossed moving from previousTotal to newTotal.
	EvaluateXpCrossing(ctx context.Context, userID uuid.UUID, previousTotal, newTotal int, now time.Time) []model.Badge
	// EvaluateTier awards the tier badge for the user's current level tier.
	EvaluateTier(ctx context.Context, userID uuid.UUID, tier string, now time.Time) []model.Badge
	// EvaluateStreakCrossing awards streak-milestone badges and the
	// streak_milestone XP bonus for each crossed day-count. Unlike the XP
	// and tier triggers, errors propagate so the streak batch can count the
	// user as failed and retry the whole unit on the next run.
	EvaluateStreakCrossing(ctx context.Context, userID uuid.UUID, previousDays, newDays int, now time.Time) ([]model.Badge, int, error)
	UserBadges(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error)
}

type badgeService struct {
	badgeRepo repository.BadgeRepository
	xpService XpService
	publisher event.Publisher
}

func NewBadgeService(badgeRepo repository.BadgeRepository, xpService XpService, publisher event.Publisher) BadgeService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &badgeService{
		badgeRepo: badgeRepo,
		xpService: xpService,
		publisher: publisher,
	}
}

func (s *badgeService) CheckAndAward(ctx context.Context, userID uuid.UUID, slug string, now time.Time) (*model.Badge, error) {
	badge, _, err := s.award(ctx, userID, slug, now)
	return badge, err
}

// award reports through created whether this call actually unlocked the badge.
func (s *badgeService) award(ctx context.Context, userID uuid.UUID, slug string, now time.Time) (*model.Badge, bool, error) {
	badge, err := s.badgeRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not configured yet, not an error.
			return nil, false, nil
		}
		return nil, false, err
	}

	created, err := s.badgeRepo.InsertUserBadge(ctx, &model.UserBadge{
		UserID:    userID,
		BadgeID:   badge.ID,
		AwardedAt: now,
	})
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Already has the badge.
		return badge, false, nil
	}

	if badge.XpReward > 0 {
		meta := map[string]interface{}{"badge_slug": badge.Slug}
		if _, _, err := s.xpService.GrantAmount(ctx, userID, EventBadgeUnlocked, badge.XpReward, meta, now); err != nil {
			log.Printf("❌ failed to grant badge reward XP: user_id=%s badge=%s err=%v", userID, badge.Slug, err)
		}
	}

	s.publisher.Publish(event.AchievementEvent{
		UserID:     userID,
		Type:       event.TypeBadgeUnlocked,
		OccurredAt: now,
		Metadata: map[string]interface{}{
			"badge_slug": badge.Slug,
			"badge_name": badge.Name,
			"badge_type": badge.Type,
			"xp_reward":  badge.XpReward,
		},
	})

	return badge, true, nil
}

func (s *badgeService) EvaluateXpCrossing(ctx context.Context, userID uuid.UUID, previousTotal, newTotal int, now time.Time) []model.Badge {
	var unlocked []model.Badge
	for _, threshold := range crossedThresholds(previousTotal, newTotal, xpMilestones) {
		badge, created, err := s.award(ctx, userID, xpMilestoneSlug(threshold), now)
		if err != nil {
			log.Printf("❌ xp milestone badge check failed: user_id=%s threshold=%d err=%v", userID, threshold, err)
			continue
		}
		if created {
			unlocked = append(unlocked, *badge)
		}
	}
	return unlocked
}

func (s *badgeService) EvaluateTier(ctx context.Context, userID uuid.UUID, tier string, now time.Time) []model.Badge {
	badge, created, err := s.award(ctx, userID, tierSlug(tier), now)
	if err != nil {
		log.Printf("❌ tier badge check failed: user_id=%s tier=%s err=%v", userID, tier, err)
		return nil
	}
	if !created {
		return nil
	}
	return []model.Badge{*badge}
}

func (s *badgeService) EvaluateStreakCrossing(ctx context.Context, userID uuid.UUID, previousDays, newDays int, now time.Time) ([]model.Badge, int, error) {
	var unlocked []model.Badge
	milestones := 0

	for _, days := range crossedThresholds(previousDays, newDays, streakMilestones) {
		badge, created, err := s.award(ctx, userID, streakMilestoneSlug(days), now)
		if err != nil {
			return unlocked, milestones, err
		}
		milestones++
		if !created {
			// Already awarded on an earlier (possibly partially failed) run;
			// the XP bonus went out with the badge, so skip it too.
			continue
		}
		unlocked = append(unlocked, *badge)

		meta := map[string]interface{}{"streak_days": days}
		if _, _, err := s.xpService.Grant(ctx, userID, EventStreakMilestone, meta, now); err != nil {
			return unlocked, milestones, err
		}
	}

	return unlocked, milestones, nil
}

func (s *badgeService) UserBadges(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error) {
	return s.badgeRepo.FindUserBadges(ctx, userID)
}
