package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ktokiya/eigaplan/internal/config"
	"github.com/ktokiya/eigaplan/internal/database"
	"github.com/ktokiya/eigaplan/internal/handler"
	"github.com/ktokiya/eigaplan/internal/ingest"
	"github.com/ktokiya/eigaplan/internal/middleware"
	"github.com/ktokiya/eigaplan/internal/planner"
	"github.com/ktokiya/eigaplan/internal/queue"
	"github.com/ktokiya/eigaplan/internal/repository"
	"github.com/ktokiya/eigaplan/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	theaters := repository.NewTheaterRepo(db)
	movies := repository.NewMovieRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	distances := repository.NewDistanceRepo(db)
	plans := repository.NewPlanRepo(db)
	crawls := repository.NewCrawlStatusRepo(db)
	stats := repository.NewStatsRepo(db, showtimes)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	optimizer := planner.New(showtimes, distances,
		planner.WithBuffer(cfg.BufferMinutes),
		planner.WithTransitFallback(cfg.TransitFallback),
		planner.WithMaxResults(cfg.MaxPlans),
		planner.WithDemoPlans(cfg.DemoPlans),
	)

	importer := ingest.NewImporter(theaters, movies, showtimes, crawls)

	e := echo.New()

	// Redis-backed cache and rate limiting degrade to no-ops when the
	// client is unavailable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(showtimes, theaters, distances, stats))
	router.RegisterPlans(e, handler.NewPlanHandler(optimizer, plans, cfg.DemoPlans), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(importer, crawls), cfg.JWTSecret)

	// Background consumer appends saved-plan events to logs/plans.log.
	go func() {
		if err := queue.StartPlanConsumer(); err != nil {
			log.Printf("plan consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
