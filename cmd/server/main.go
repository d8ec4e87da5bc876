package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/thoughtstream/thoughtstream-backend/internal/config"
	"github.com/thoughtstream/thoughtstream-backend/internal/database"
	"github.com/thoughtstream/thoughtstream-backend/internal/handlers"
	"github.com/thoughtstream/thoughtstream-backend/internal/middleware"
	"github.com/thoughtstream/thoughtstream-backend/internal/routes"
	"github.com/thoughtstream/thoughtstream-backend/internal/services"
	"github.com/thoughtstream/thoughtstream-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Open the document store. Without MONGODB_URI the server runs on the
	// in-memory store, which is enough for local development.
	var st store.Store
	if cfg.MongoURI != "" {
		log.Printf("Connecting to MongoDB...")
		mongoStore, err := store.OpenMongo(context.Background(), cfg.MongoURI)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoStore.Close(context.Background())
		st = mongoStore
	} else {
		log.Println("⚠️  WARNING: MONGODB_URI not set; using in-memory store (data is not persisted)")
		st = store.NewMemoryStore()
	}

	// Redis is optional: without it reads skip the cache and hit the store.
	var redisClient *redis.Client
	if cfg.RedisURI != "" {
		log.Printf("Connecting to Redis...")
		client, err := database.OpenRedis(cfg.RedisURI)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v", err)
			log.Println("Entity caching will not be available")
		} else {
			redisClient = client
			defer client.Close()
		}
	}

	cache := services.NewCacheService(redisClient)
	rel := services.NewRelationshipService(st, cache)
	userService := services.NewUserService(st, cache, rel)
	thoughtService := services.NewThoughtService(st, cache, rel)

	userHandler := handlers.NewUserHandler(userService)
	thoughtHandler := handlers.NewThoughtHandler(thoughtService)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestID)
	if cfg.IsProduction() {
		r.Use(middleware.RateLimit)
		log.Println("✅ Production security enabled (per-IP rate limiting)")
	}

	// Health check (no rate limit concerns; trivially cheap)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, userHandler, thoughtHandler)

	log.Printf("🚀 Thoughtstream backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
