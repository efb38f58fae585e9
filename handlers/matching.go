package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/middleware"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/services"
)

func SetupMatchingRoutes(app *fiber.App, matchingService *services.MatchingService) {
	// 🔓 Public routes: browsing needs no identity
	app.Get("/api/matches", matchingService.ListMatchings)
	app.Get("/api/matches/in-range", matchingService.ListMatchingsInRange)
	app.Get("/api/matches/:matching_id", matchingService.GetMatchingDetail)

	// 🔐 Authenticated routes. Secured per-route because the public GET
	// paths share the /api/matches prefix.
	auth := middleware.UserContextMiddleware()
	app.Post("/api/matches", auth, matchingService.CreateMatching)
	app.Patch("/api/matches/:matching_id", auth, matchingService.UpdateMatching)
	app.Delete("/api/matches/:matching_id", auth, matchingService.DeleteMatching)
	app.Get("/api/matches/:matching_id/apply", auth, matchingService.GetMatchingApplyContents)
}
