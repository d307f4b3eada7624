package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/studyduel/studyduel-backend/internal/config"
	"github.com/studyduel/studyduel-backend/internal/handler"
	"github.com/studyduel/studyduel-backend/internal/middleware"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
	"github.com/studyduel/studyduel-backend/internal/service"
	"github.com/studyduel/studyduel-backend/pkg/database"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// The leaderboard and notification publishing degrade without
		// redis; the engine itself keeps working off postgres.
		log.Printf("redis unreachable at %s, running degraded: %v", cfg.RedisAddr, err)
	}

	userRepo := repository.NewUserRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	awardRepo := repository.NewAwardRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	authHandler := handler.NewAuthHandler(authService)

	achievementService := service.NewAchievementService(achievementRepo)
	achievementHandler := handler.NewAchievementHandler(achievementService)

	notificationService := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	leaderboardService := service.NewLeaderboardService(awardRepo, userRepo, redisClient, cfg.LeaderboardCacheTTL)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)

	statsService := service.NewStatsService(activityRepo)
	awardService := service.NewAwardService(awardRepo, leaderboardService, notificationService)
	checkerService := service.NewCheckerService(userRepo, achievementRepo, awardRepo, statsService, awardService)
	batchService := service.NewBatchService(checkerService, userRepo, cfg.BatchConcurrency)
	checkHandler := handler.NewCheckHandler(checkerService, batchService)

	activityService := service.NewActivityService(activityRepo, checkerService)
	activityHandler := handler.NewActivityHandler(activityService)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		result, err := batchService.CheckAll(ctx, cfg.SweepLimit)
		if err != nil {
			log.Printf("scheduled sweep failed: %v", err)
			return
		}
		log.Printf("scheduled sweep %s done: %d users checked", result.CorrelationID, result.Summary.TotalUsers)
	}); err != nil {
		log.Fatalf("invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)

		// Read-only catalog and leaderboard are public.
		api.GET("/achievements", achievementHandler.ListAchievements)
		api.GET("/achievements/stats", leaderboardHandler.GetAchievementStats)
		api.GET("/achievements/:id", achievementHandler.GetAchievement)
		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	}

	api.Use(authMiddleware.RequireAuth())
	{
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/achievements", achievementHandler.CreateAchievement)
			admin.PUT("/achievements/:id", achievementHandler.UpdateAchievement)
			admin.DELETE("/achievements/:id", achievementHandler.DeleteAchievement)

			admin.POST("/achievements/check-many", checkHandler.CheckMany)
			admin.POST("/achievements/check-all", checkHandler.CheckAll)
		}

		api.GET("/users/:id/achievements", checkHandler.GetUserAchievements)
		api.GET("/users/:id/achievements/progress", checkHandler.GetUserProgress)
		api.POST("/users/:id/achievements/check", checkHandler.CheckUser)
		api.POST("/achievements/trigger", checkHandler.TriggerCheck)

		api.POST("/duels/results", activityHandler.RecordDuelResult)
		api.POST("/study/sessions", activityHandler.RecordStudySession)
		api.POST("/courses/complete", activityHandler.CompleteCourse)
		api.POST("/friends", activityHandler.AddFriend)
		api.POST("/reports", activityHandler.FileReport)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.UserAchievementStats{},
		&model.Notification{},
		&model.DuelResult{},
		&model.StudySession{},
		&model.CourseCompletion{},
		&model.Friendship{},
		&model.Report{},
	)
}

func seedRoles(db *gorm.DB) error {
	roles := []model.Role{
		{Name: "admin", Description: "Platform administrator"},
		{Name: "teacher", Description: "Course teacher"},
		{Name: "student", Description: "Regular student"},
	}

	for _, role := range roles {
		var existing model.Role
		err := db.Where("name = ?", role.Name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// seedAdminUser creates a development admin account. Never runs outside
// APP_ENV=development.
func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", "admin@studyduel.local").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     "admin",
		Email:        "admin@studyduel.local",
		PasswordHash: string(hash),
		RoleID:       &adminRole.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("seeded development admin user (admin@studyduel.local)")
	return nil
}
