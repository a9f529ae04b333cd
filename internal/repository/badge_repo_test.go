package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/testutil"
	"gorm.io/gorm"
)

func createBadge(t *testing.T, db *gorm.DB, slug string, active bool) *model.Badge {
	t.Helper()
	badge := &model.Badge{
		Slug:     slug,
		Name:     slug,
		Type:     model.BadgeTypeParticipation,
		IsActive: active,
	}
	if err := db.Create(badge).Error; err != nil {
		t.Fatalf("create badge: %v", err)
	}
	return badge
}

func TestInsertUserBadgeReportsCreation(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := createUser(t, db, "jon")
	badge := createBadge(t, db, "first-question", true)
	repo := NewBadgeRepository(db)
	ctx := context.Background()
	awardedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	created, err := repo.InsertUserBadge(ctx, &model.UserBadge{
		UserID: user.ID, BadgeID: badge.ID, AwardedAt: awardedAt,
	})
	if err != nil {
		t.Fatalf("first insert error: %v", err)
	}
	if !created {
		t.Fatal("first insert should report created")
	}

	created, err = repo.InsertUserBadge(ctx, &model.UserBadge{
		UserID: user.ID, BadgeID: badge.ID, AwardedAt: awardedAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("conflicting insert error: %v", err)
	}
	if created {
		t.Fatal("conflicting insert should be a silent no-op")
	}

	count, err := repo.CountUserBadges(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountUserBadges error: %v", err)
	}
	if count != 1 {
		t.Fatalf("user_badges rows = %d, want 1", count)
	}
}

func TestFindBySlugIgnoresInactive(t *testing.T) {
	db := testutil.OpenTestDB(t)
	createBadge(t, db, "seasonal", false)
	repo := NewBadgeRepository(db)

	_, err := repo.FindBySlug(context.Background(), "seasonal")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestFindUserBadgesPreloadsCatalog(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := createUser(t, db, "kate")
	badge := createBadge(t, db, "helper", true)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	if _, err := repo.InsertUserBadge(ctx, &model.UserBadge{
		UserID: user.ID, BadgeID: badge.ID,
		AwardedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("insert error: %v", err)
	}

	badges, err := repo.FindUserBadges(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindUserBadges error: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("badges = %d, want 1", len(badges))
	}
	if badges[0].Badge.Slug != "helper" {
		t.Fatalf("preloaded badge slug = %q, want helper", badges[0].Badge.Slug)
	}
}
