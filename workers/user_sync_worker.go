package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

// ProfileFromAuthService matches the JSON the auth service's public
// profile endpoint returns.
type ProfileFromAuthService struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Nickname   string    `json:"nickname"`
	Ntrp       string    `json:"ntrp,omitempty"`
	Address    string    `json:"address,omitempty"`
	ProfileImg *string   `json:"profile_img,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type getProfileChangesResponse struct {
	Users []ProfileFromAuthService `json:"users"`
}

// SiteUserSyncWorker mirrors user profiles from the auth service into the
// local site_users table, so that findByEmail lookups stay local and
// matchmaking never blocks on the auth service.
type SiteUserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewSiteUserSyncWorker(db *gorm.DB, authServiceBaseURL, endpointPath, serviceToken string) *SiteUserSyncWorker {
	return &SiteUserSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      authServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *SiteUserSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Site User Sync Worker (auth-service → site_users)…")
	go w.run(ctx)
}

func (w *SiteUserSyncWorker) run(ctx context.Context) {
	// Initial sync backfills from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial user sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ User sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Site User Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local table.
func (w *SiteUserSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM site_users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches profile changes since the given time and upserts them
// into site_users on email.
func (w *SiteUserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid auth service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to auth service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("auth service non-200 response: %d, %s", resp.StatusCode, string(body))
	}

	var response getProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode auth service response: %w", err)
	}
	if len(response.Users) == 0 {
		return nil
	}

	var upsertCount, errorCount int
	for _, profile := range response.Users {
		localUser := models.SiteUser{
			Email:      profile.Email,
			Nickname:   profile.Nickname,
			Ntrp:       profile.Ntrp,
			Address:    profile.Address,
			ProfileImg: profile.ProfileImg,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"nickname", "ntrp", "address", "profile_img", "updated_at",
			}),
		}).Create(&localUser).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert site_user (email=%q): %v", profile.Email, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d user(s) since %s (%d upserted, %d errors)",
		len(response.Users), sinceStr, upsertCount, errorCount)
	return nil
}
