package main

import (
	"log"

	"anoa.com/tanyajawab/internal/bootstrap"
	"anoa.com/tanyajawab/internal/config"
	"anoa.com/tanyajawab/internal/event"
	"anoa.com/tanyajawab/internal/handler"
	"anoa.com/tanyajawab/internal/jobs"
	"anoa.com/tanyajawab/internal/middleware"
	"anoa.com/tanyajawab/internal/repository"
	"anoa.com/tanyajawab/internal/scheduler"
	"anoa.com/tanyajawab/internal/service"
	"anoa.com/tanyajawab/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg.DatabaseURL)
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := bootstrap.SeedLevels(db); err != nil {
		log.Fatalf("failed to seed levels: %v", err)
	}
	if err := bootstrap.SeedBadges(db); err != nil {
		log.Fatalf("failed to seed badges: %v", err)
	}
	if err := bootstrap.SeedTasks(db); err != nil {
		log.Fatalf("failed to seed tasks: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("⚠️ REDIS_URL not set, realtime push and deferred effects disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	xpRepo := repository.NewXpRepository(db)
	levelRepo := repository.NewLevelRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	achievementLogRepo := repository.NewAchievementLogRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)

	// Achievement event bus with its three consumers
	bus := event.NewBus(
		event.NewAuditConsumer(achievementLogRepo),
		event.NewRealtimeConsumer(redisClient),
		event.NewEffectsConsumer(redisClient),
	)
	defer bus.Close()

	// Services
	xpService := service.NewXpService(xpRepo, levelRepo, userRepo, bus)
	badgeService := service.NewBadgeService(badgeRepo, xpService, bus)
	taskService := service.NewTaskService(taskRepo, userRepo, xpService, bus)
	streakService := service.NewStreakService(userRepo, badgeService)
	awardService := service.NewAwardService(xpService, taskService, badgeService, streakService, userRepo, bus)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo)

	// Handlers
	gamificationHandler := handler.NewGamificationHandler(awardService, xpService, badgeService, taskService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	achievementHandler := handler.NewAchievementHandler(achievementLogRepo, redisClient)

	// Scheduled jobs
	sched := scheduler.New()
	sched.Register(jobs.NewDailyTaskResetJob(taskService, cfg.DailyTaskResetSpec, cfg.JobTimeout))
	sched.Register(jobs.NewWeeklyTaskResetJob(taskService, cfg.WeeklyTaskResetSpec, cfg.JobTimeout))
	sched.Register(jobs.NewStreakCheckJob(streakService, cfg.StreakCheckSpec, cfg.JobTimeout))
	sched.Start()
	defer sched.Stop()

	adminHandler := handler.NewAdminHandler(sched)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/gamification/progress", gamificationHandler.GetProgress)
		api.GET("/gamification/levels", gamificationHandler.GetLevels)
		api.GET("/gamification/xp/summary", gamificationHandler.GetXpSummary)
		api.GET("/gamification/xp/history", gamificationHandler.GetXpHistory)
		api.GET("/gamification/badges", gamificationHandler.GetBadges)
		api.GET("/gamification/tasks", gamificationHandler.GetTasks)
		api.POST("/gamification/tasks/:id/complete", gamificationHandler.CompleteTask)
		api.GET("/gamification/achievements", achievementHandler.GetHistory)
		api.GET("/gamification/achievements/ws", achievementHandler.HandleWebSocket)
		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/award", gamificationHandler.Award)
			admin.POST("/badges/award", gamificationHandler.AwardBadge)
			admin.GET("/jobs", adminHandler.ListJobs)
			admin.POST("/jobs/:name/run", adminHandler.RunJob)
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
