package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qurba-backend/internal/config"
	"qurba-backend/internal/database"
	"qurba-backend/internal/handlers"
	"qurba-backend/internal/middleware"
	"qurba-backend/internal/repository"
	"qurba-backend/internal/router"
	"qurba-backend/internal/services"
	"qurba-backend/internal/websocket"
	"qurba-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Qurba Backend...")
	ctx := context.Background()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	profileRepo := repository.NewProfileRepo(pool)
	whitelistRepo := repository.NewWhitelistRepo(pool)
	applicationRepo := repository.NewApplicationRepo(pool)
	materialRepo := repository.NewMaterialRepo(pool)
	formRepo := repository.NewFormRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	submissionRepo := repository.NewSubmissionRepo(pool)
	heroRepo := repository.NewHeroRepo(pool)
	settingsRepo := repository.NewSettingsRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	settingsService := services.NewSettingsService(settingsRepo, cfg.DefaultTotalDays)
	publisher := services.NewPublisher(redisClients.Main)
	youtubeService := services.NewYouTubeService()

	authService := services.NewAuthService(profileRepo, whitelistRepo, redisClients.Main, jwtAuth, cfg.InternalEmailDomain)
	courseService := services.NewCourseService(services.CourseStores{
		Materials:   materialRepo,
		Completions: progressRepo,
		Submissions: submissionRepo,
		Forms:       formRepo,
		Quizzes:     quizRepo,
		Profiles:    profileRepo,
		Settings:    settingsService,
	}, publisher)
	leaderboardService := services.NewLeaderboardService(
		profileRepo,
		submissionRepo,
		redisClients.Main,
		time.Duration(cfg.LeaderboardTTLMinutes)*time.Minute,
	)
	contentService := services.NewContentService(materialRepo, formRepo, quizRepo, heroRepo, youtubeService)
	adminService := services.NewAdminService(services.AdminDeps{
		Profiles:     profileRepo,
		Whitelist:    whitelistRepo,
		Applications: applicationRepo,
		Materials:    materialRepo,
		Progress:     progressRepo,
		Submissions:  submissionRepo,
		Settings:     settingsService,
		Leaderboard:  leaderboardService,
	})
	publicService := services.NewPublicService(applicationRepo, heroRepo, cfg.SupportWhatsAppNumber)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	courseHandler := handlers.NewCourseHandler(courseService, leaderboardService, authService)
	contentHandler := handlers.NewContentHandler(contentService)
	adminHandler := handlers.NewAdminHandler(adminService, settingsService)
	publicHandler := handlers.NewPublicHandler(publicService)

	// ──── Step 5: Start Job Worker Pool ────
	workerPool := worker.NewPool(redisClients.Main, leaderboardService, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	scheduler, err := services.NewLeaderboardScheduler(profileRepo, publisher, cfg.LeaderboardCron, cfg.SchedulerTimezone)
	if err != nil {
		log.Fatalf("✗ Leaderboard scheduler failed: %v", err)
	}
	scheduler.Start()
	log.Printf("✓ Leaderboard scheduler started (%s, %s)", cfg.LeaderboardCron, cfg.SchedulerTimezone)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		courseHandler,
		contentHandler,
		adminHandler,
		publicHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		scheduler.Stop()
		workerPool.Stop()
		wsHub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Qurba Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
