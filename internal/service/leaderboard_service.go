package service

import (
	"context"
	"time"

	"anoa.com/tanyajawab/internal/repository"
	"github.com/google/uuid"
)

// Weekly activity thresholds for the label shown next to a leaderboard entry.
const (
	WeeklyOnFire   = 150
	WeeklyTrending = 75
	WeeklyActive   = 25
)

type LeaderboardEntry struct {
	Username    string  `json:"username"`
	AvatarURL   *string `json:"avatar_url"`
	Position    int     `json:"position"`
	XpTotal     int     `json:"xp_total"`
	LevelName   string  `json:"level_name"`
	Tier        string  `json:"tier"`
	WeeklyXp    int     `json:"weekly_xp"`
	WeeklyLabel string  `json:"weekly_label"`
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int, now time.Time) ([]LeaderboardEntry, error)
}

type leaderboardService struct {
	repo repository.LeaderboardRepository
}

func NewLeaderboardService(repo repository.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int, now time.Time) ([]LeaderboardEntry, error) {
	users, err := s.repo.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	var userIDs []uuid.UUID
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}

	weekly := map[uuid.UUID]int{}
	if len(userIDs) > 0 {
		weekly, err = s.repo.GetWeeklyXp(ctx, userIDs, now)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entry := LeaderboardEntry{
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
			Position:  i + 1, // 1-based position
			XpTotal:   u.XpTotal,
			WeeklyXp:  weekly[u.ID],
		}
		if u.Level != nil {
			entry.LevelName = u.Level.Name
			entry.Tier = u.Level.Tier
		}
		entry.WeeklyLabel = weeklyLabel(entry.WeeklyXp)

		entries = append(entries, entry)
	}

	return entries, nil
}

func weeklyLabel(weeklyXp int) string {
	switch {
	case weeklyXp >= WeeklyOnFire:
		return "🔥 On Fire!"
	case weeklyXp >= WeeklyTrending:
		return "⚡ Trending"
	case weeklyXp >= WeeklyActive:
		return "📈 Active"
	default:
		return ""
	}
}
