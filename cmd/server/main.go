package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"                     // .env loader for local development
	"github.com/labstack/echo/v4"                  // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo built-in middleware (CORS)

	"github.com/iliyamo/store-ratings/internal/config"     // Internal config loader
	"github.com/iliyamo/store-ratings/internal/database"   // MySQL pool
	"github.com/iliyamo/store-ratings/internal/handler"    // HTTP handlers
	"github.com/iliyamo/store-ratings/internal/middleware" // Redis cache and rate limit middleware
	"github.com/iliyamo/store-ratings/internal/queue"      // rating event consumer
	"github.com/iliyamo/store-ratings/internal/repository" // DB repositories
	"github.com/iliyamo/store-ratings/internal/router"     // Route registration
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client turns the cache and the rate limiter
	// into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	users := repository.NewUserRepo(db)
	stores := repository.NewStoreRepo(db)
	ratings := repository.NewRatingRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	adminH := handler.NewAdminHandler(cfg, users, stores, ratings)
	ownerH := handler.NewOwnerHandler(cfg, users, stores, ratings)
	userH := handler.NewUserHandler(cfg, users, stores, ratings)

	e := echo.New()
	e.Use(echomw.CORS()) // dashboards are served from a separate origin

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, limitMW)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)
	router.RegisterOwner(e, ownerH, cfg.JWTSecret)
	router.RegisterUser(e, userH, cfg.JWTSecret, cacheMW)

	// The consumer keeps its own reconnect loop; it never takes the server down.
	go func() {
		if err := queue.StartRatingConsumer(); err != nil {
			log.Printf("rating consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
