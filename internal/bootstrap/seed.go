package bootstrap

import (
	"log"

	"anoa.com/tanyajawab/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Level{},
		&model.XpLog{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Task{},
		&model.UserTask{},
		&model.AchievementLog{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: model.RoleAdmin, Description: "Super administrator"},
		{Name: model.RoleMember, Description: "Regular member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedLevels installs the XP ladder. Thresholds are strictly increasing and
// the ladder must have a zero floor, otherwise level resolution fails.
func SeedLevels(db *gorm.DB) error {
	ladder := []model.Level{
		{Name: "Newcomer", XpRequired: 0, Tier: model.TierBeginner},
		{Name: "Contributor", XpRequired: 100, Tier: model.TierBeginner},
		{Name: "Regular", XpRequired: 500, Tier: model.TierIntermediate},
		{Name: "Insider", XpRequired: 1500, Tier: model.TierIntermediate},
		{Name: "Expert", XpRequired: 3000, Tier: model.TierAdvanced},
		{Name: "Mentor", XpRequired: 6000, Tier: model.TierAdvanced},
		{Name: "Authority", XpRequired: 12000, Tier: model.TierExpert},
		{Name: "Luminary", XpRequired: 25000, Tier: model.TierExpert},
		{Name: "Legend", XpRequired: 50000, Tier: model.TierLegend},
	}

	for _, level := range ladder {
		var count int64
		if err := db.Model(&model.Level{}).
			Where("name = ?", level.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&level).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedBadges(db *gorm.DB) error {
	catalog := []model.Badge{
		// Participation
		{Slug: "first-question", Name: "Curious Mind", Type: model.BadgeTypeParticipation, XpReward: 5},
		{Slug: "first-answer", Name: "Helping Hand", Type: model.BadgeTypeParticipation, XpReward: 5},
		{Slug: "verified-answer", Name: "Fact Checker", Type: model.BadgeTypeQuality, XpReward: 15},

		// XP milestones
		{Slug: "xp-100", Name: "Century", Type: model.BadgeTypeContribution, XpReward: 10},
		{Slug: "xp-500", Name: "Pathfinder", Type: model.BadgeTypeContribution, XpReward: 15},
		{Slug: "xp-1000", Name: "Trailblazer", Type: model.BadgeTypeContribution, XpReward: 20},
		{Slug: "xp-2500", Name: "High Achiever", Type: model.BadgeTypeContribution, XpReward: 25},
		{Slug: "xp-5000", Name: "Powerhouse", Type: model.BadgeTypeContribution, XpReward: 30},
		{Slug: "xp-10000", Name: "Force of Nature", Type: model.BadgeTypeContribution, XpReward: 40},
		{Slug: "xp-25000", Name: "Living Archive", Type: model.BadgeTypeRare, XpReward: 50},
		{Slug: "xp-50000", Name: "Hall of Fame", Type: model.BadgeTypeRare, XpReward: 100},

		// Level tiers
		{Slug: "tier-beginner", Name: "First Steps", Type: model.BadgeTypeParticipation, XpReward: 0},
		{Slug: "tier-intermediate", Name: "Getting Serious", Type: model.BadgeTypeContribution, XpReward: 10},
		{Slug: "tier-advanced", Name: "Seasoned", Type: model.BadgeTypeContribution, XpReward: 20},
		{Slug: "tier-expert", Name: "Authority Figure", Type: model.BadgeTypeRare, XpReward: 40},
		{Slug: "tier-legend", Name: "Legend", Type: model.BadgeTypeRare, XpReward: 100},

		// Streak milestones: XP for these comes from the streak_milestone
		// event, so the badges themselves carry no reward.
		{Slug: "streak-3", Name: "Warming Up", Type: model.BadgeTypeConsistency, XpReward: 0},
		{Slug: "streak-7", Name: "One Week Strong", Type: model.BadgeTypeConsistency, XpReward: 0},
		{Slug: "streak-14", Name: "Fortnight", Type: model.BadgeTypeConsistency, XpReward: 0},
		{Slug: "streak-30", Name: "Monthly Devotion", Type: model.BadgeTypeConsistency, XpReward: 0},
		{Slug: "streak-60", Name: "Habit Formed", Type: model.BadgeTypeConsistency, XpReward: 0},
		{Slug: "streak-100", Name: "Centurion", Type: model.BadgeTypeConsistency, XpReward: 0},
		{Slug: "streak-365", Name: "Year of Fire", Type: model.BadgeTypeRare, XpReward: 0},
	}

	for _, badge := range catalog {
		var count int64
		if err := db.Model(&model.Badge{}).
			Where("slug = ?", badge.Slug).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			badge.IsActive = true
			if err := db.Create(&badge).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedTasks(db *gorm.DB) error {
	catalog := []model.Task{
		{Title: "Ask 1 Question", Frequency: model.FrequencyDaily, XpReward: 5},
		{Title: "Answer 1 Question", Frequency: model.FrequencyDaily, XpReward: 10},
		{Title: "Leave 3 Comments", Frequency: model.FrequencyDaily, XpReward: 5},
		{Title: "Get an Answer Verified", Frequency: model.FrequencyWeekly, XpReward: 30},
		{Title: "Earn 100 XP", Frequency: model.FrequencyWeekly, XpReward: 25},
	}

	for _, task := range catalog {
		var count int64
		if err := db.Model(&model.Task{}).
			Where("title = ?", task.Title).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			task.IsActive = true
			if err := db.Create(&task).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@tanyajawab.com").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     "admin",
		Email:        "admin@tanyajawab.com",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@tanyajawab.com")

	return nil
}
