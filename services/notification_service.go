// services/notification_service.go
package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/middleware"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

const connectTTL = 12 * time.Hour

// NotificationService persists notifications and pushes them to connected
// clients over SSE. Delivery-channel presence is tracked in redis so job
// runs can tell connected users apart from offline ones.
type NotificationService struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewNotificationService(db *gorm.DB, rdb *redis.Client) *NotificationService {
	return &NotificationService{DB: db, Redis: rdb}
}

// Connect marks the user's delivery channel as established. Called before
// each send in job contexts; redis outages are logged and ignored so a
// notification is never lost over bookkeeping.
func (s *NotificationService) Connect(userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := s.Redis.Set(ctx, "sse:connected:"+userID, time.Now().Unix(), connectTTL).Err(); err != nil {
		log.Printf("[Notify] failed to record connect for user %s: %v", userID, err)
	}
}

// CreateAndSend stores a notification with the canned message for its
// type. Fire-and-forget: failures are logged, never returned.
func (s *NotificationService) CreateAndSend(user models.SiteUser, m *models.Matching, t models.NotificationType) {
	s.save(user, m, t, models.MessageFor(t))
}

// CreateAndSendWeatherIssue stores a weather-cancellation notification
// carrying the forecast details.
func (s *NotificationService) CreateAndSendWeatherIssue(user models.SiteUser, m *models.Matching, w models.WeatherForecast) {
	s.save(user, m, models.NotifyWeatherIssue, models.WeatherIssueMessage(w))
}

func (s *NotificationService) save(user models.SiteUser, m *models.Matching, t models.NotificationType, content string) {
	n := models.Notification{
		SiteUserID: user.ID,
		Type:       t,
		Title:      m.Title,
		Content:    content,
		MatchingID: m.ID,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		log.Printf("[Notify] failed to store %s notification for user %s: %v", t, user.ID, err)
	}
}

// PurgeOlderThan deletes notification rows created before the cutoff.
// Returns the number of rows removed.
func (s *NotificationService) PurgeOlderThan(cutoff time.Time) (int64, error) {
	res := s.DB.Where("create_time < ?", cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// --- Fiber handlers ---

// ListNotifications returns the caller's recent notifications, newest
// first.
func (s *NotificationService) ListNotifications(c *fiber.Ctx) error {
	email := middleware.CallerEmail(c)

	var user models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return renderError(c, models.ErrEmailNotFound)
	}

	var notifications []models.Notification
	if err := s.DB.
		Where("site_user_id = ?", user.ID).
		Order("create_time DESC").
		Limit(50).
		Find(&notifications).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load notifications"})
	}
	return c.JSON(notifications)
}

// StreamNotificationsSSE streams new notifications for the authenticated
// user as server-sent events.
func (s *NotificationService) StreamNotificationsSSE(c *fiber.Ctx) error {
	email := middleware.CallerEmail(c)

	var user models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return renderError(c, models.ErrEmailNotFound)
	}
	s.Connect(user.ID)

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastCreateTime time.Time

		var latest models.Notification
		if err := s.DB.
			Where("site_user_id = ?", user.ID).
			Order("create_time DESC").
			First(&latest).Error; err == nil {
			lastCreateTime = latest.CreateTime
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Notify] SSE init error for user %s: %v", user.ID, err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var fresh []models.Notification
				err := s.DB.
					Where("site_user_id = ? AND create_time > ?", user.ID, lastCreateTime).
					Order("create_time ASC").
					Find(&fresh).Error
				if err != nil {
					log.Printf("[Notify] SSE query error for user %s: %v", user.ID, err)
					continue
				}
				if len(fresh) == 0 {
					continue
				}

				lastCreateTime = fresh[len(fresh)-1].CreateTime

				for _, n := range fresh {
					payload, _ := json.Marshal(n)
					fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
