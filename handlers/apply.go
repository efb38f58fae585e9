package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/middleware"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/services"
)

func SetupApplyRoutes(app *fiber.App, applyService *services.ApplyService, limiter *middleware.RedisLimiter) {
	secured := app.Group("/api/apply", middleware.UserContextMiddleware())

	secured.Post("/matches/:matching_id",
		middleware.RateLimitMiddleware(limiter, 10, time.Minute),
		applyService.ApplyToMatching)
	secured.Delete("/:apply_id", applyService.CancelApply)
	secured.Patch("/matches/:matching_id", applyService.AcceptApplies)
}
