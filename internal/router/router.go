// Package router wires HTTP routes to their handlers and middleware.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/clubrosario/booking-bot/internal/config"
    "github.com/clubrosario/booking-bot/internal/handler"
    "github.com/clubrosario/booking-bot/internal/middleware"
)

// RegisterRoutes attaches all routes to the Echo instance.
//
// The WhatsApp webhook endpoints are public (Meta authenticates via the
// verify-token handshake) but rate limited. The tool endpoints used by the
// orchestrator sit behind a service JWT; the facility listing additionally
// gets a short-lived Redis response cache because the catalogue rarely
// changes.
func RegisterRoutes(e *echo.Echo, tools *handler.ToolHandler, webhook *handler.WebhookHandler,
    jwtSecret string, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {

    e.GET("/healthz", handler.Health)

    limited := middleware.NewTokenBucket(rlCfg, rdb)

    e.GET("/webhook", webhook.Verify)
    e.POST("/webhook", webhook.Receive, limited)

    v1 := e.Group("/v1/tools", middleware.ServiceAuth(jwtSecret), limited)
    v1.GET("/facilities", tools.ListFacilities, middleware.NewRedisCache(cacheCfg, rdb))
    v1.GET("/availability", tools.CheckAvailability)
    v1.POST("/reservations", tools.CreateReservation)
    v1.POST("/cancellations/find", tools.FindCancellable)
    v1.POST("/cancellations/confirm", tools.ConfirmCancel)
}
