package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/planforge/planforge-backend/internal/cache"
	"github.com/planforge/planforge-backend/internal/data/db"
	"github.com/planforge/planforge-backend/internal/data/repos"
	"github.com/planforge/planforge-backend/internal/handlers"
	"github.com/planforge/planforge-backend/internal/platform/envutil"
	"github.com/planforge/planforge-backend/internal/platform/logger"
	"github.com/planforge/planforge-backend/internal/server"
	"github.com/planforge/planforge-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	maxHoursPerDay := envutil.GetInt("MAX_HOURS_PER_DAY", 12, log)
	allowOrigins := envutil.Get("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)
	cacheDisabled := envutil.GetBool("PREVIEW_CACHE_DISABLED", false, log)

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	conn := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	groupRepo := repos.NewPlanGroupRepo(conn, log)
	contentRepo := repos.NewPlanContentRepo(conn, log)
	planRepo := repos.NewPlanRepo(conn, log)
	scheduleRepo := repos.NewScheduleRepo(conn, log)
	logRepo := repos.NewRescheduleLogRepo(conn, log)
	historyRepo := repos.NewPlanHistoryRepo(conn, log)

	// Cache (optional; previews run uncached without it)
	var previewCache cache.PreviewCache
	if cacheDisabled {
		log.Info("Preview cache disabled, running uncached")
	} else {
		previewCache, err = cache.NewPreviewCache(log)
		if err != nil {
			log.Warn("Preview cache unavailable, running uncached", "error", err)
			previewCache = nil
		} else {
			defer previewCache.Close()
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	previewService := services.NewPreviewService(
		conn,
		log,
		groupRepo,
		contentRepo,
		planRepo,
		scheduleRepo,
		previewCache,
		services.DefaultPacing(),
		float64(maxHoursPerDay),
	)
	commitService := services.NewCommitService(
		conn,
		log,
		previewService,
		groupRepo,
		planRepo,
		logRepo,
		historyRepo,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	rescheduleHandler := handlers.NewRescheduleHandler(log, previewService, commitService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		RescheduleHandler: rescheduleHandler,
		AllowOrigins:      strings.Split(allowOrigins, ","),
	})

	port := envutil.Get("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
