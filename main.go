package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/handlers"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/middleware"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/services"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/utils"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, venue photos only
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-Email, X-User-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitS3(); err != nil {
		log.Fatal("failed to initialize S3 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.SiteUser{},
		&models.Matching{},
		&models.Apply{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	var redisClient *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("⚠️  REDIS_URL not set, rate limiting and connect bookkeeping disabled")
	}

	geoClient := services.NewGeoClientFromEnv()
	weatherClient := services.NewWeatherClientFromEnv()
	notificationService := services.NewNotificationService(db, redisClient)
	matchingService := services.NewMatchingService(db, geoClient, weatherClient, notificationService)
	applyService := services.NewApplyService(db)
	resolutionService := services.NewResolutionService(db, weatherClient, notificationService)
	limiter := middleware.NewRedisLimiter(redisClient)

	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("MATCHING_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("MATCHING_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewSiteUserSyncWorker(db, authServiceURL, "/api/v1/public/profiles", serviceToken)
	syncWorker.Start(ctx)

	sched, err := resolutionService.StartScheduler()
	if err != nil {
		log.Fatal("failed to start resolution scheduler:", err)
	}

	handlers.SetupMatchingRoutes(app, matchingService)
	handlers.SetupApplyRoutes(app, applyService, limiter)
	handlers.SetupNotificationRoutes(app, notificationService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Site User Sync Worker running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := sched.Shutdown(); err != nil {
		log.Printf("scheduler shutdown error: %v", err)
	}
	_ = app.Shutdown()
}
