package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/danuarta/field-booking/internal/config"     // Internal config loader
	"github.com/danuarta/field-booking/internal/database"   // MySQL connection setup
	"github.com/danuarta/field-booking/internal/handler"    // HTTP handlers
	"github.com/danuarta/field-booking/internal/middleware" // Redis-backed cache and rate limiter
	"github.com/danuarta/field-booking/internal/queue"      // background event consumer
	"github.com/danuarta/field-booking/internal/repository" // database repositories
	"github.com/danuarta/field-booking/internal/router"     // route registration
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the public response cache and the rate limiter.  A nil
	// client disables both; the API itself stays fully functional.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	}

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	fieldRepo := repository.NewFieldRepo(db)
	resRepo := repository.NewReservationRepo(db)
	schedRepo := repository.NewMemberScheduleRepo(db)

	authH := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	publicH := handler.NewPublicHandler(fieldRepo, resRepo, schedRepo)
	bookingH := handler.NewBookingHandler(fieldRepo, resRepo, schedRepo)
	adminResH := handler.NewAdminReservationHandler(resRepo)
	adminFieldH := handler.NewAdminFieldHandler(fieldRepo)
	adminMemberH := handler.NewAdminMemberHandler(fieldRepo, resRepo, schedRepo)

	e := echo.New() // Create Echo instance
	e.Validator = handler.NewRequestValidator()

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterCustomer(e, bookingH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminResH, adminFieldH, adminMemberH, cfg.JWTSecret)

	// Consume reservation events in the background; the consumer runs its
	// own reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
