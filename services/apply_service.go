package services

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/middleware"
	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

type ApplyService struct {
	DB *gorm.DB
}

func NewApplyService(db *gorm.DB) *ApplyService {
	return &ApplyService{DB: db}
}

// decideCapacity is the seat-count rule: over capacity is rejected,
// exactly full flips OPEN to FULL, and a FULL matching with a freed seat
// reopens.
func decideCapacity(accepted, recruitNum int, current models.RecruitStatus) (models.RecruitStatus, error) {
	switch {
	case accepted > recruitNum:
		return current, models.ErrRecruitNumOver
	case accepted == recruitNum && current == models.RecruitOpen:
		return models.RecruitFull, nil
	case accepted < recruitNum && current == models.RecruitFull:
		return models.RecruitOpen, nil
	default:
		return current, nil
	}
}

// freeSeat releases one accepted seat and reopens a FULL matching.
func freeSeat(m *models.Matching) error {
	if m.AcceptedNum > 0 {
		m.AcceptedNum--
	}
	if m.RecruitStatus == models.RecruitFull {
		return m.ChangeRecruitStatus(models.RecruitOpen)
	}
	return nil
}

// Apply creates a PENDING apply for the caller. A user holds at most one
// live apply per matching; re-applying after a cancel creates a fresh
// record.
func (s *ApplyService) Apply(email, matchingID string) (*models.Apply, error) {
	var user models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, models.ErrEmailNotFound
	}

	var matching models.Matching
	if err := s.DB.First(&matching, "id = ?", matchingID).Error; err != nil {
		return nil, models.ErrMatchingNotFound
	}

	apply := &models.Apply{
		ID:          uuid.NewString(),
		MatchingID:  matchingID,
		SiteUserID:  user.ID,
		ApplyStatus: models.ApplyPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&models.Apply{}).
			Where("matching_id = ? AND site_user_id = ? AND apply_status IN ?",
				matchingID, user.ID, models.LiveApplyStatuses()).
			Count(&live).Error; err != nil {
			return err
		}
		if live > 0 {
			return models.ErrAlreadyExistedApply
		}
		return tx.Create(apply).Error
	})
	if err != nil {
		return nil, err
	}
	return apply, nil
}

// Cancel moves an apply to CANCELED. Canceling an already-canceled apply
// is a no-op; canceling an ACCEPTED apply frees its seat and reopens a
// FULL matching.
func (s *ApplyService) Cancel(applyID string) (*models.Apply, error) {
	var apply models.Apply
	if err := s.DB.First(&apply, "id = ?", applyID).Error; err != nil {
		return nil, models.ErrApplyNotFound
	}
	if apply.ApplyStatus == models.ApplyCanceled {
		return &apply, nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		wasAccepted := apply.ApplyStatus == models.ApplyAccepted

		if err := apply.ChangeApplyStatus(models.ApplyCanceled); err != nil {
			return err
		}
		if err := tx.Save(&apply).Error; err != nil {
			return err
		}
		if !wasAccepted {
			return nil
		}

		var matching models.Matching
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&matching, "id = ?", apply.MatchingID).Error; err != nil {
			return err
		}
		if err := freeSeat(&matching); err != nil {
			return err
		}
		return tx.Save(&matching).Error
	})
	if err != nil {
		return nil, err
	}
	return &apply, nil
}

// Accept is the organizer's bulk decision: the listed applies move to
// PENDING or ACCEPTED in one transaction. Capacity is enforced inside the
// same transaction; filling every seat flips the matching to FULL.
func (s *ApplyService) Accept(email string, pendingIDs, acceptedIDs []string, matchingID string) (*models.Matching, error) {
	var user models.SiteUser
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, models.ErrUserNotFound
	}

	var matching models.Matching
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&matching, "id = ?", matchingID).Error; err != nil {
			return models.ErrMatchingNotFound
		}
		if !matching.IsOrganizer(user.ID) {
			return models.ErrPermissionDenied
		}

		if err := s.transitionApplies(tx, matchingID, pendingIDs, models.ApplyPending); err != nil {
			return err
		}
		if err := s.transitionApplies(tx, matchingID, acceptedIDs, models.ApplyAccepted); err != nil {
			return err
		}

		var accepted int64
		if err := tx.Model(&models.Apply{}).
			Where("matching_id = ? AND apply_status = ?", matchingID, models.ApplyAccepted).
			Count(&accepted).Error; err != nil {
			return err
		}
		target, err := decideCapacity(int(accepted), matching.RecruitNum, matching.RecruitStatus)
		if err != nil {
			return err
		}
		matching.AcceptedNum = int(accepted)
		if target != matching.RecruitStatus {
			if err := matching.ChangeRecruitStatus(target); err != nil {
				return err
			}
		}
		return tx.Save(&matching).Error
	})
	if err != nil {
		return nil, err
	}
	return &matching, nil
}

// transitionApplies moves the listed applies of one matching to target.
// An id outside the matching's apply set fails the whole batch; an apply
// already in the target state is left alone.
func (s *ApplyService) transitionApplies(tx *gorm.DB, matchingID string, applyIDs []string, target models.ApplyStatus) error {
	if len(applyIDs) == 0 {
		return nil
	}

	var applies []models.Apply
	if err := tx.
		Where("matching_id = ? AND id IN ?", matchingID, applyIDs).
		Find(&applies).Error; err != nil {
		return err
	}
	if len(applies) != len(applyIDs) {
		return models.ErrApplyNotFound
	}

	for i := range applies {
		if applies[i].ApplyStatus == target {
			continue
		}
		if err := applies[i].ChangeApplyStatus(target); err != nil {
			return err
		}
		if err := tx.Save(&applies[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// --- Fiber handlers ---

// ApplyToMatching handles POST /api/apply/matches/:matching_id.
func (s *ApplyService) ApplyToMatching(c *fiber.Ctx) error {
	apply, err := s.Apply(middleware.CallerEmail(c), c.Params("matching_id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(apply)
}

// CancelApply handles DELETE /api/apply/:apply_id.
func (s *ApplyService) CancelApply(c *fiber.Ctx) error {
	apply, err := s.Cancel(c.Params("apply_id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(apply)
}

// AcceptApplies handles PATCH /api/apply/matches/:matching_id.
func (s *ApplyService) AcceptApplies(c *fiber.Ctx) error {
	var req models.AcceptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	matching, err := s.Accept(middleware.CallerEmail(c), req.PendingApplies, req.AcceptedApplies, c.Params("matching_id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(matching)
}
