package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/middleware"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/services"
)

func SetupNotificationRoutes(app *fiber.App, notificationService *services.NotificationService) {
	secured := app.Group("/api/notifications", middleware.UserContextMiddleware())

	secured.Get("/", notificationService.ListNotifications)
	secured.Get("/stream", notificationService.StreamNotificationsSSE)
}
