package main // main package for the booking service executable

import (
    "log"  // standard logging
    "time" // timeouts for outbound HTTP clients

    "github.com/joho/godotenv"             // loads .env files in development
    "github.com/labstack/echo/v4"          // web framework
    echomw "github.com/labstack/echo/v4/middleware" // echo built-in middleware

    "github.com/clubrosario/booking-bot/internal/agent"      // orchestrator client
    "github.com/clubrosario/booking-bot/internal/config"     // configuration loading
    "github.com/clubrosario/booking-bot/internal/database"   // MySQL connection pool
    "github.com/clubrosario/booking-bot/internal/engine"     // reservation lifecycle engine
    "github.com/clubrosario/booking-bot/internal/handler"    // HTTP handlers
    "github.com/clubrosario/booking-bot/internal/history"    // conversation history store
    "github.com/clubrosario/booking-bot/internal/notify"     // WhatsApp sender
    "github.com/clubrosario/booking-bot/internal/queue"      // promotion event consumer
    "github.com/clubrosario/booking-bot/internal/registry"   // facility registry cache
    "github.com/clubrosario/booking-bot/internal/repository" // data access layer
    "github.com/clubrosario/booking-bot/internal/risk"       // cancellation risk estimation
    "github.com/clubrosario/booking-bot/internal/router"     // route registration
    "github.com/clubrosario/booking-bot/internal/schedule"   // slot grid arithmetic
    queuepub "github.com/clubrosario/booking-bot/internal/service" // promotion event publisher
)

func main() {
    // Load .env if present; in production configuration comes from the
    // environment and a missing file is not an error.
    if err := godotenv.Load(); err != nil {
        log.Println("no .env file found, relying on environment")
    }

    cfg := config.Load() // read required configuration or exit

    // Open the MySQL pool and verify connectivity before serving traffic.
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database connection failed: %v", err)
    }
    defer db.Close()

    // Redis is optional: caching, rate limiting, webhook dedup and the
    // conversation history all degrade gracefully when it is absent.
    rdb := config.NewRedisClient()

    // Data access layer.
    facilityRepo := repository.NewFacilityRepo(db)
    reservationRepo := repository.NewReservationRepo(db, cfg.OverbookingMaxPending)

    // In-memory facility registry refreshed from the database on demand.
    facilities := registry.New(facilityRepo)

    // Slot grid: operating hours and timezone for all slot arithmetic.
    grid := schedule.LoadGrid(cfg.Timezone, cfg.OpenHour, cfg.CloseHour, cfg.SlotMinutes)

    // Risk estimation: reservation history from MySQL, rain from Open-Meteo,
    // probability from the external scoring service when configured.
    var scorer risk.Scorer
    if cfg.PredictorURL != "" {
        scorer = risk.NewHTTPScorer(cfg.PredictorURL, 3*time.Second)
    }
    estimator := risk.NewEstimator(reservationRepo, risk.NewWeatherClient(5*time.Second), scorer, cfg.Holidays)

    // The engine publishes promotion events to RabbitMQ; the consumer below
    // turns them into WhatsApp notifications.
    eng := engine.New(facilities, reservationRepo, estimator, queuepub.Publisher{}, grid,
        cfg.OverbookingThreshold, cfg.OverbookingDiscount)

    // Outbound collaborators for the conversational flow.
    sender := notify.NewSender(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, 10*time.Second)
    orchestrator := agent.NewClient(cfg.AgentURL, 30*time.Second)
    convHistory := history.NewStore(rdb, 20, 24*time.Hour)

    // Consume promotion events in the background for the life of the
    // process; the consumer reconnects on broker failures.
    go func() {
        if err := queue.StartPromotionConsumer(sender); err != nil {
            log.Printf("promotion consumer stopped: %v", err)
        }
    }()

    e := echo.New()              // create the Echo instance
    e.Use(echomw.Logger())       // request logging
    e.Use(echomw.Recover())      // recover from handler panics

    tools := handler.NewToolHandler(eng, facilities)
    webhook := handler.NewWebhookHandler(cfg.WhatsAppVerify, rdb, convHistory, orchestrator, sender)

    router.RegisterRoutes(e, tools, webhook, cfg.JWTSecret, rdb,
        config.LoadCacheConfig(), config.LoadRateLimitConfig())

    // Start the HTTP server; Start blocks until the server exits.
    e.Logger.Fatal(e.Start(":" + cfg.Port))
}
