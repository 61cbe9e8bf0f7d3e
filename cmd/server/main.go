package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/onboardhq/onboard/internal/bootstrap"
	"github.com/onboardhq/onboard/internal/config"
	"github.com/onboardhq/onboard/internal/handler"
	"github.com/onboardhq/onboard/internal/middleware"
	"github.com/onboardhq/onboard/internal/model"
	"github.com/onboardhq/onboard/internal/repository"
	"github.com/onboardhq/onboard/internal/service"
	"github.com/onboardhq/onboard/pkg/database"
	"github.com/onboardhq/onboard/pkg/mailer"
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
	if err := bootstrap.SeedAdminUser(db, cfg); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	redisClient := newRedisClient(cfg.RedisURL)

	var searchIndex service.SearchIndexService
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchIndex = service.NewMeiliSearchService(meiliClient)
	}

	mail, err := mailer.NewSMTPMailer(cfg.RequestTimeout)
	if err != nil {
		log.Printf("mail relay not configured, alerts disabled: %v", err)
		mail = nil
	}

	userRepo := repository.NewUserRepository(db)
	collaboratorRepo := repository.NewCollaboratorRepository(db)
	eventRepo := repository.NewEventRepository(db)

	authService := service.NewAuthService(userRepo, redisClient, cfg.JWTSecret, cfg.TokenTTL, cfg.LoginThrottle)
	collaboratorService := service.NewCollaboratorService(collaboratorRepo, searchIndex)
	alertService := service.NewAlertService(userRepo, eventRepo, mail, redisClient, cfg.SystemMailbox)
	eventService := service.NewEventService(eventRepo, alertService)

	authHandler := handler.NewAuthHandler(authService)
	collaboratorHandler := handler.NewCollaboratorHandler(collaboratorService)
	calendarHandler := handler.NewCalendarHandler(eventService)
	alertHandler := handler.NewAlertHandler(alertService, eventService, redisClient)
	healthHandler := handler.NewHealthHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		if err := alertService.SendWeeklyDigest(ctx); err != nil {
			log.Printf("weekly digest failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("invalid reminder cron %q: %v", cfg.ReminderCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.Default()
	setupCORS(router, cfg.AllowedOrigins)

	router.GET("/", healthHandler.Root)

	api := router.Group("/api")

	api.GET("/health", healthHandler.Check)

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify", authHandler.Verify)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/collaborators", collaboratorHandler.List)
		protected.GET("/collaborators/:id", collaboratorHandler.Get)

		manager := protected.Group("")
		manager.Use(authMiddleware.RequireRole(model.RoleManager))
		{
			manager.POST("/collaborators", collaboratorHandler.Create)
			manager.PUT("/collaborators/:id", collaboratorHandler.Update)
			manager.POST("/collaborators/:id/complete-onboarding", collaboratorHandler.CompleteOnboarding)
			manager.POST("/calendar", calendarHandler.Create)
		}

		admin := protected.Group("")
		admin.Use(authMiddleware.RequireRole(model.RoleAdmin))
		{
			admin.DELETE("/collaborators/:id", collaboratorHandler.Delete)
		}

		protected.GET("/calendar", calendarHandler.List)
		protected.GET("/calendar/:id/alerts", alertHandler.EventAlerts)

		protected.GET("/alerts/upcoming", alertHandler.Upcoming)
		protected.POST("/alerts/test", alertHandler.SendTest)
		protected.GET("/alerts/stream", alertHandler.Stream)
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func newRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, token revocation and alert stream disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, continuing without redis: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable, continuing without it: %v", err)
		return nil
	}

	return client
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := strings.Split(allowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
