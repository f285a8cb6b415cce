package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/openjournal/journal-backend/internal/auth"
	"github.com/openjournal/journal-backend/internal/config"
	"github.com/openjournal/journal-backend/internal/database"
	"github.com/openjournal/journal-backend/internal/handlers"
	"github.com/openjournal/journal-backend/internal/middleware"
	"github.com/openjournal/journal-backend/internal/repository"
	"github.com/openjournal/journal-backend/internal/routes"
	"github.com/openjournal/journal-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load and validate configuration; missing required vars fail startup
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer database.Disconnect()

	// Redis is optional; without it rate limiting is disabled
	rateLimited := false
	if cfg.RedisURI != "" {
		log.Printf("Connecting to Redis...")
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			log.Fatal("Failed to connect to Redis: ", err)
		}
		defer database.DisconnectRedis()
		rateLimited = true
	} else {
		log.Println("REDIS_URI not set; rate limiting disabled")
	}

	// Cloudinary is optional; without it photos are stored inline only
	var cloudinaryService *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		var err error
		cloudinaryService, err = services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Photo uploads will be stored inline only")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Cloudinary credentials not found. Photos will be stored inline only")
	}

	// Repositories
	userRepo := repository.NewMongoUserRepository(database.DB)
	journalRepo := repository.NewMongoJournalRepository(database.DB)
	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure user indexes: %v", err)
	}
	if err := journalRepo.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure journal indexes: %v", err)
	}

	// Services and handlers
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	authService := services.NewAuthService(userRepo, tokenService)
	journalService := services.NewJournalService(journalRepo)
	authHandler := handlers.NewAuthHandler(authService)
	journalHandler := handlers.NewJournalHandler(journalService, cloudinaryService)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if rateLimited {
		r.Use(middleware.RateLimit)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.Setup(r, authHandler, journalHandler, tokenService, userRepo)

	log.Printf("🚀 Journal backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
