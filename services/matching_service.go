// services/matching_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/middleware"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/utils"
)

// Editing or deleting a matching that already has this many accepted
// seats (organizer included) penalizes the organizer.
const penaltyThreshold = 2

// shouldPenalizeEdit reports whether editing with this many accepted
// seats penalizes the organizer.
func shouldPenalizeEdit(acceptedCount int) bool {
	return acceptedCount >= penaltyThreshold
}

// shouldPenalizeDelete exempts weather cancellations: a weather-forced
// deletion is not the organizer's fault.
func shouldPenalizeDelete(status models.RecruitStatus, acceptedCount int) bool {
	return status != models.RecruitWeatherIssue && acceptedCount >= penaltyThreshold
}

// UploadVenuePhoto is swapped out in tests; production uses S3.
var UploadVenuePhoto = utils.UploadFileToS3

type MatchingService struct {
	DB       *gorm.DB
	Geo      GeoLookup
	Weather  WeatherLookup
	Notifier NotificationSink
}

func NewMatchingService(db *gorm.DB, geo GeoLookup, weather WeatherLookup, notifier NotificationSink) *MatchingService {
	return &MatchingService{DB: db, Geo: geo, Weather: weather, Notifier: notifier}
}

// Create persists a new matching for the organizer resolved from email,
// seats the organizer with an auto-accepted apply, and evaluates the
// weather immediately when the match is today.
func (s *MatchingService) Create(ctx context.Context, email string, req models.MatchingRequest, image *multipart.FileHeader) (*models.Matching, error) {
	var organizer models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&organizer).Error; err != nil {
		return nil, models.ErrEmailNotFound
	}

	lat, lon, err := s.Geo.Resolve(ctx, req.Location)
	if err != nil {
		return nil, err
	}

	imageURL := ""
	if image != nil && image.Size > 0 {
		imageURL, err = s.uploadVenuePhoto(req.Location, image)
		if err != nil {
			return nil, err
		}
	}

	matching := &models.Matching{
		ID:         uuid.NewString(),
		SiteUserID: organizer.ID,
		Lat:        lat,
		Lon:        lon,
		ImageURL:   imageURL,
	}
	matching.ApplyRequestFields(req)

	var forecast *models.WeatherForecast
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(matching).Error; err != nil {
			return err
		}

		// The organizer always occupies one seat.
		organizerApply := &models.Apply{
			ID:          uuid.NewString(),
			MatchingID:  matching.ID,
			SiteUserID:  organizer.ID,
			ApplyStatus: models.ApplyAccepted,
		}
		if err := tx.Create(organizerApply).Error; err != nil {
			return err
		}
		matching.AcceptedNum = 1

		if isSameDay(req.Date, time.Now()) {
			f, err := s.Weather.ForecastFor(ctx, matching)
			if err != nil {
				return err
			}
			forecast = &f
			if f.HasPrecipitation() {
				if err := matching.ChangeRecruitStatus(models.RecruitWeatherIssue); err != nil {
					return err
				}
			}
		}

		return tx.Save(matching).Error
	})
	if err != nil {
		return nil, err
	}

	if forecast != nil {
		if forecast.HasPrecipitation() {
			s.Notifier.CreateAndSendWeatherIssue(organizer, matching, *forecast)
		} else {
			s.Notifier.CreateAndSend(organizer, matching, models.NotifyWeatherOK)
		}
	}

	matching.SiteUser = organizer
	return matching, nil
}

// Update edits a matching. Only the organizer may edit; every accepted
// non-organizer seat is reset to PENDING (participants must re-confirm)
// and editing a committed matching penalizes the organizer.
func (s *MatchingService) Update(ctx context.Context, email, matchingID string, req models.MatchingRequest, image *multipart.FileHeader) (*models.Matching, error) {
	var user models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, models.ErrUserNotFound
	}

	var matching models.Matching
	if err := s.DB.First(&matching, "id = ?", matchingID).Error; err != nil {
		return nil, models.ErrMatchingNotFound
	}
	if !matching.IsOrganizer(user.ID) {
		return nil, models.ErrPermissionDenied
	}

	lat, lon := matching.Lat, matching.Lon
	if req.Location != matching.Location {
		var err error
		lat, lon, err = s.Geo.Resolve(ctx, req.Location)
		if err != nil {
			return nil, err
		}
	}

	if image != nil && image.Size > 0 {
		imageURL, err := s.uploadVenuePhoto(req.Location, image)
		if err != nil {
			return nil, err
		}
		matching.ImageURL = imageURL
	}

	var toNotify []models.SiteUser
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var acceptedApplies []models.Apply
		if err := tx.
			Where("matching_id = ? AND apply_status = ?", matchingID, models.ApplyAccepted).
			Find(&acceptedApplies).Error; err != nil {
			return err
		}

		if shouldPenalizeEdit(len(acceptedApplies)) {
			user.Penalize(models.PenaltyMatchingModify)
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
		}

		// An edit invalidates prior commitments; everyone but the
		// organizer goes back to PENDING.
		for i := range acceptedApplies {
			if acceptedApplies[i].SiteUserID == user.ID {
				continue
			}
			if err := acceptedApplies[i].ChangeApplyStatus(models.ApplyPending); err != nil {
				return err
			}
			if err := tx.Save(&acceptedApplies[i]).Error; err != nil {
				return err
			}
		}

		matching.ApplyRequestFields(req)
		matching.Lat = lat
		matching.Lon = lon
		matching.AcceptedNum = 1
		if matching.RecruitStatus == models.RecruitFull {
			if err := matching.ChangeRecruitStatus(models.RecruitOpen); err != nil {
				return err
			}
		}
		if err := tx.Save(&matching).Error; err != nil {
			return err
		}

		var err error
		toNotify, err = s.applicantsToNotify(tx, matchingID, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, applicant := range toNotify {
		s.Notifier.CreateAndSend(applicant, &matching, models.NotifyModifyMatching)
	}

	matching.SiteUser = user
	return &matching, nil
}

// Delete removes a matching and all of its applies. A weather-cancelled
// matching is not the organizer's fault, so it never penalizes.
func (s *MatchingService) Delete(email, matchingID string) error {
	var user models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return models.ErrUserNotFound
	}

	var matching models.Matching
	if err := s.DB.First(&matching, "id = ?", matchingID).Error; err != nil {
		return models.ErrMatchingNotFound
	}
	if !matching.IsOrganizer(user.ID) {
		return models.ErrPermissionDenied
	}

	var toNotify []models.SiteUser
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var acceptedApplies []models.Apply
		if err := tx.
			Where("matching_id = ? AND apply_status = ?", matchingID, models.ApplyAccepted).
			Find(&acceptedApplies).Error; err != nil {
			return err
		}

		if shouldPenalizeDelete(matching.RecruitStatus, len(acceptedApplies)) {
			user.Penalize(models.PenaltyMatchingDelete)
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
		}

		var err error
		toNotify, err = s.applicantsToNotify(tx, matchingID, user.ID)
		if err != nil {
			return err
		}

		if err := tx.Where("matching_id = ?", matchingID).Delete(&models.Apply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&matching).Error
	})
	if err != nil {
		return err
	}

	for _, applicant := range toNotify {
		s.Notifier.CreateAndSend(applicant, &matching, models.NotifyDeleteMatching)
	}
	return nil
}

// GetMatchingByFilter lists matchings. An empty filter returns OPEN
// matchings still recruiting; otherwise each populated criterion narrows
// the query.
func (s *MatchingService) GetMatchingByFilter(filter models.MatchingFilter, page, size int) ([]models.MatchingPreview, int64, error) {
	query := s.DB.Model(&models.Matching{}).Preload("SiteUser")

	if filter.IsEmpty() {
		query = query.
			Where("recruit_status = ?", models.RecruitOpen).
			Where("recruit_due > ?", time.Now())
	} else {
		if filter.Date != nil {
			query = query.Where("date = ?", *filter.Date)
		}
		if filter.Region != "" {
			query = query.Where("location LIKE ?", "%"+filter.Region+"%")
		}
		if filter.MatchingType != "" {
			query = query.Where("matching_type = ?", filter.MatchingType)
		}
		if filter.Ntrp != "" {
			query = query.Where("ntrp = ?", filter.Ntrp)
		}
	}

	return s.pageOfPreviews(query, page, size)
}

// GetMatchingWithinDistance returns matchings inside a rectangular box of
// the given diameter (km) centered on the query point. Bounding corners
// sit at distance/2 along bearings 45° and 225°.
func (s *MatchingService) GetMatchingWithinDistance(center utils.Point, distanceKm float64, page, size int) ([]models.MatchingPreview, int64, error) {
	northEast := utils.CalculateBound(center, distanceKm/2, 45.0)
	southWest := utils.CalculateBound(center, distanceKm/2, 225.0)

	query := s.DB.Model(&models.Matching{}).Preload("SiteUser").
		Where("lat BETWEEN ? AND ?", southWest.Lat, northEast.Lat).
		Where("lon BETWEEN ? AND ?", southWest.Lon, northEast.Lon)

	return s.pageOfPreviews(query, page, size)
}

// GetDetail loads the full projection of one matching.
func (s *MatchingService) GetDetail(matchingID string) (*models.MatchingDetail, error) {
	var matching models.Matching
	if err := s.DB.Preload("SiteUser").First(&matching, "id = ?", matchingID).Error; err != nil {
		return nil, models.ErrMatchingNotFound
	}
	detail := models.DetailFromMatching(matching)
	return &detail, nil
}

// GetApplyContents computes the application overview for one matching.
// Only the organizer sees who is still waiting.
func (s *MatchingService) GetApplyContents(email, matchingID string) (*models.ApplyContents, error) {
	var user models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, models.ErrEmailNotFound
	}

	var matching models.Matching
	if err := s.DB.First(&matching, "id = ?", matchingID).Error; err != nil {
		return nil, models.ErrMatchingNotFound
	}

	var pendingCount int64
	if err := s.DB.Model(&models.Apply{}).
		Where("matching_id = ? AND apply_status = ?", matchingID, models.ApplyPending).
		Count(&pendingCount).Error; err != nil {
		return nil, err
	}

	acceptedMembers, err := s.membersByStatus(matchingID, models.ApplyAccepted)
	if err != nil {
		return nil, err
	}

	isApplied := false
	var ownApply models.Apply
	if err := s.DB.
		Where("matching_id = ? AND site_user_id = ?", matchingID, user.ID).
		Order("created_at DESC").
		First(&ownApply).Error; err == nil {
		isApplied = ownApply.IsLive()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	contents := &models.ApplyContents{
		IsApplied:       isApplied,
		ApplyNum:        pendingCount,
		RecruitNum:      matching.RecruitNum,
		AcceptedNum:     matching.AcceptedNum,
		AcceptedMembers: acceptedMembers,
	}

	if matching.IsOrganizer(user.ID) {
		appliedMembers, err := s.membersByStatus(matchingID, models.ApplyPending)
		if err != nil {
			return nil, err
		}
		contents.AppliedMembers = appliedMembers
	}
	return contents, nil
}

func (s *MatchingService) membersByStatus(matchingID string, status models.ApplyStatus) ([]models.ApplyMember, error) {
	var applies []models.Apply
	if err := s.DB.Preload("SiteUser").
		Where("matching_id = ? AND apply_status = ?", matchingID, status).
		Find(&applies).Error; err != nil {
		return nil, err
	}
	members := make([]models.ApplyMember, 0, len(applies))
	for _, a := range applies {
		members = append(members, models.MemberFromApply(a))
	}
	return members, nil
}

// applicantsToNotify collects every applicant of the matching except the
// organizer, regardless of apply status.
func (s *MatchingService) applicantsToNotify(tx *gorm.DB, matchingID, organizerID string) ([]models.SiteUser, error) {
	var applies []models.Apply
	if err := tx.Preload("SiteUser").
		Where("matching_id = ?", matchingID).
		Find(&applies).Error; err != nil {
		return nil, err
	}
	users := make([]models.SiteUser, 0, len(applies))
	for _, a := range applies {
		if a.SiteUserID == organizerID {
			continue
		}
		users = append(users, a.SiteUser)
	}
	return users, nil
}

func (s *MatchingService) pageOfPreviews(query *gorm.DB, page, size int) ([]models.MatchingPreview, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var matchings []models.Matching
	if err := query.
		Order("created_at ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&matchings).Error; err != nil {
		return nil, 0, err
	}

	previews := make([]models.MatchingPreview, 0, len(matchings))
	for _, m := range matchings {
		previews = append(previews, models.PreviewFromMatching(m))
	}
	return previews, total, nil
}

func (s *MatchingService) uploadVenuePhoto(location string, image *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(image.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "matchings/" + slug.Make(location) + "-" + uuid.NewString()[:8] + ext
	url, err := UploadVenuePhoto(image, key)
	if err != nil {
		log.Printf("[Matching] venue photo upload failed: %v", err)
		return "", err
	}
	return url, nil
}

func isSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// --- Fiber handlers ---

// CreateMatching handles POST /api/matches (multipart, optional image).
func (s *MatchingService) CreateMatching(c *fiber.Ctx) error {
	req, err := parseMatchingRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	image, _ := c.FormFile("image")

	matching, err := s.Create(c.Context(), middleware.CallerEmail(c), req, image)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(matching)
}

// UpdateMatching handles PATCH /api/matches/:matching_id.
func (s *MatchingService) UpdateMatching(c *fiber.Ctx) error {
	req, err := parseMatchingRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	image, _ := c.FormFile("image")

	matching, err := s.Update(c.Context(), middleware.CallerEmail(c), c.Params("matching_id"), req, image)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(matching)
}

// DeleteMatching handles DELETE /api/matches/:matching_id.
func (s *MatchingService) DeleteMatching(c *fiber.Ctx) error {
	if err := s.Delete(middleware.CallerEmail(c), c.Params("matching_id")); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// ListMatchings handles GET /api/matches with optional filter params.
func (s *MatchingService) ListMatchings(c *fiber.Ctx) error {
	var filter models.MatchingFilter
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date (use YYYY-MM-DD)"})
		}
		filter.Date = &date
	}
	filter.Region = c.Query("region")
	filter.MatchingType = models.MatchingType(c.Query("matching_type"))
	filter.Ntrp = c.Query("ntrp")

	page, size := parsePage(c)
	previews, total, err := s.GetMatchingByFilter(filter, page, size)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"matchings": previews, "total": total, "page": page, "size": size})
}

// ListMatchingsInRange handles GET /api/matches/in-range?lat=&lon=&distance=.
func (s *MatchingService) ListMatchingsInRange(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lon are required"})
	}
	distance, err := strconv.ParseFloat(c.Query("distance", "10"), 64)
	if err != nil || distance <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "distance must be a positive number of kilometers"})
	}

	page, size := parsePage(c)
	previews, total, err := s.GetMatchingWithinDistance(utils.Point{Lat: lat, Lon: lon}, distance, page, size)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"matchings": previews, "total": total, "page": page, "size": size})
}

// GetMatchingDetail handles GET /api/matches/:matching_id.
func (s *MatchingService) GetMatchingDetail(c *fiber.Ctx) error {
	detail, err := s.GetDetail(c.Params("matching_id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(detail)
}

// GetMatchingApplyContents handles GET /api/matches/:matching_id/apply.
func (s *MatchingService) GetMatchingApplyContents(c *fiber.Ctx) error {
	contents, err := s.GetApplyContents(middleware.CallerEmail(c), c.Params("matching_id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(contents)
}

func parseMatchingRequest(c *fiber.Ctx) (models.MatchingRequest, error) {
	var req models.MatchingRequest

	if payload := c.FormValue("payload"); payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return req, errors.New("invalid payload JSON")
		}
	} else if err := c.BodyParser(&req); err != nil {
		return req, errors.New("invalid request body")
	}

	if req.Title == "" || req.Location == "" {
		return req, errors.New("title and location are required")
	}
	if req.RecruitNum < 2 {
		return req, errors.New("recruit_num must be at least 2")
	}
	if req.Date.IsZero() || req.RecruitDue.IsZero() {
		return req, errors.New("date and recruit_due are required")
	}
	if req.MatchingType == "" {
		req.MatchingType = models.MatchingSingle
	}
	return req, nil
}
