package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"anoa.com/tanyajawab/internal/event"
	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/repository"
	"anoa.com/tanyajawab/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LevelChange describes a level transition produced by a recompute.
type LevelChange struct {
	Previous *model.Level `json:"previous"`
	New      *model.Level `json:"new"`
}

type LevelProgress struct {
	XpCurrent       int          `json:"xp_current"`
	XpRequired      int          `json:"xp_required"` // threshold of the next level, or current when maxed
	CurrentLevel    *model.Level `json:"current_level"`
	NextLevel       *model.Level `json:"next_level,omitempty"`
	ProgressPercent float64      `json:"progress_percent"`
}

type XpSummary struct {
	XpTotal  int                         `json:"xp_total"`
	ByEvent  []repository.XpEventSummary `json:"by_event"`
	LedgerOK bool                        `json:"ledger_ok"` // cached total matches the ledger sum
}

type XpService interface {
	// Grant awards the configured amount for eventType, then recomputes the
	// user's level from the post-increment total. Ledger append, total
	// increment and level recompute are serialized per user. A non-nil XpLog
	// alongside a non-nil error means the ledger write committed and only
	// the recompute failed; a later grant or Recompute converges the level.
	Grant(ctx context.Context, userID uuid.UUID, eventType string, metadata map[string]interface{}, now time.Time) (*model.XpLog, *LevelChange, error)
	// GrantAmount is Grant with an explicit amount, used for carrier events
	// whose reward lives on the badge or task row.
	GrantAmount(ctx context.Context, userID uuid.UUID, eventType string, amount int, metadata map[string]interface{}, now time.Time) (*model.XpLog, *LevelChange, error)
	Resolve(ctx context.Context, xpTotal int) (*model.Level, error)
	// Levels returns the full ladder ordered by threshold, for clients
	// rendering the progression track.
	Levels(ctx context.Context) ([]model.Level, error)
	Recompute(ctx context.Context, userID uuid.UUID, now time.Time) (*LevelChange, error)
	Progress(ctx context.Context, userID uuid.UUID) (*LevelProgress, error)
	Summary(ctx context.Context, userID uuid.UUID) (*XpSummary, error)
	History(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.XpLog, int64, error)
}

type xpService struct {
	xpRepo    repository.XpRepository
	levelRepo repository.LevelRepository
	userRepo  repository.UserRepository
	publisher event.Publisher
	locks     *userLocks
}

func NewXpService(xpRepo repository.XpRepository, levelRepo repository.LevelRepository, userRepo repository.UserRepository, publisher event.Publisher) XpService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &xpService{
		xpRepo:    xpRepo,
		levelRepo: levelRepo,
		userRepo:  userRepo,
		publisher: publisher,
		locks:     newUserLocks(),
	}
}

func (s *xpService) Grant(ctx context.Context, userID uuid.UUID, eventType string, metadata map[string]interface{}, now time.Time) (*model.XpLog, *LevelChange, error) {
	amount, ok := xpAmounts[eventType]
	if !ok || amount <= 0 {
		return nil, nil, apperror.ErrUnknownEventType
	}
	return s.grant(ctx, userID, eventType, amount, metadata, now)
}

func (s *xpService) GrantAmount(ctx context.Context, userID uuid.UUID, eventType string, amount int, metadata map[string]interface{}, now time.Time) (*model.XpLog, *LevelChange, error) {
	if amount <= 0 {
		return nil, nil, apperror.ErrUnknownEventType
	}
	return s.grant(ctx, userID, eventType, amount, metadata, now)
}

func (s *xpService) grant(ctx context.Context, userID uuid.UUID, eventType string, amount int, metadata map[string]interface{}, now time.Time) (*model.XpLog, *LevelChange, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	entry := &model.XpLog{
		UserID:    userID,
		EventType: eventType,
		XpAmount:  amount,
		Metadata:  marshalMetadata(metadata),
		CreatedAt: now,
	}

	newTotal, err := s.xpRepo.AppendAndIncrement(ctx, entry)
	if err != nil {
		return nil, nil, err
	}

	s.publisher.Publish(event.AchievementEvent{
		UserID:     userID,
		Type:       event.TypeXpGained,
		OccurredAt: now,
		Metadata: map[string]interface{}{
			"event_type": eventType,
			"xp_amount":  amount,
			"xp_total":   newTotal,
		},
	})

	change, err := s.recomputeLocked(ctx, userID, now)
	if err != nil {
		return entry, nil, err
	}

	return entry, change, nil
}

func (s *xpService) Resolve(ctx context.Context, xpTotal int) (*model.Level, error) {
	level, err := s.levelRepo.FindHighestFor(ctx, xpTotal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// xpTotal is non-negative, so nothing at or below it means the
			// ladder is missing its zero floor.
			return nil, apperror.ErrNoLevelConfigured
		}
		return nil, err
	}
	return level, nil
}

func (s *xpService) Levels(ctx context.Context) ([]model.Level, error) {
	return s.levelRepo.FindAll(ctx)
}

func (s *xpService) Recompute(ctx context.Context, userID uuid.UUID, now time.Time) (*LevelChange, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.recomputeLocked(ctx, userID, now)
}

// recomputeLocked must be called with the user's lock held.
func (s *xpService) recomputeLocked(ctx context.Context, userID uuid.UUID, now time.Time) (*LevelChange, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Resolve(ctx, user.XpTotal)
	if err != nil {
		return nil, err
	}

	if user.LevelID != nil && *user.LevelID == resolved.ID {
		return nil, nil
	}

	var previous *model.Level
	if user.LevelID != nil {
		previous, err = s.levelRepo.FindByID(ctx, *user.LevelID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := s.userRepo.UpdateLevelID(ctx, userID, resolved.ID); err != nil {
		return nil, err
	}

	change := &LevelChange{Previous: previous, New: resolved}

	meta := map[string]interface{}{
		"new_level": resolved.Name,
		"new_tier":  resolved.Tier,
		"xp_total":  user.XpTotal,
	}
	if previous != nil {
		meta["previous_level"] = previous.Name
	}
	s.publisher.Publish(event.AchievementEvent{
		UserID:     userID,
		Type:       event.TypeLevelUp,
		OccurredAt: now,
		Metadata:   meta,
	})

	return change, nil
}

func (s *xpService) Progress(ctx context.Context, userID uuid.UUID) (*LevelProgress, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, err := s.Resolve(ctx, user.XpTotal)
	if err != nil {
		return nil, err
	}

	progress := &LevelProgress{
		XpCurrent:       user.XpTotal,
		XpRequired:      current.XpRequired,
		CurrentLevel:    current,
		ProgressPercent: 100,
	}

	next, err := s.levelRepo.FindNextAfter(ctx, user.XpTotal)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Top of the ladder
		return progress, nil
	}

	progress.NextLevel = next
	progress.XpRequired = next.XpRequired

	span := next.XpRequired - current.XpRequired
	if span > 0 {
		pct := float64(user.XpTotal-current.XpRequired) / float64(span) * 100
		progress.ProgressPercent = math.Round(pct*100) / 100
	}

	return progress, nil
}

func (s *xpService) Summary(ctx context.Context, userID uuid.UUID) (*XpSummary, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	byEvent, err := s.xpRepo.SummaryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ledgerSum, err := s.xpRepo.SumByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &XpSummary{
		XpTotal:  user.XpTotal,
		ByEvent:  byEvent,
		LedgerOK: ledgerSum == user.XpTotal,
	}, nil
}

func (s *xpService) History(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.XpLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return s.xpRepo.HistoryByUser(ctx, userID, page, limit)
}

func marshalMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(payload)
}
