package models

import (
	"time"

	"gorm.io/gorm"
)

// PenaltyType classifies disruptive organizer behavior.
type PenaltyType string

const (
	PenaltyMatchingModify PenaltyType = "MATCHING_MODIFY"
	PenaltyMatchingDelete PenaltyType = "MATCHING_DELETE"
)

// Score weight per penalty type. Deleting a committed matching is worse
// than editing one.
var penaltyWeights = map[PenaltyType]int{
	PenaltyMatchingModify: 1,
	PenaltyMatchingDelete: 2,
}

// SiteUser is a local mirror of a user profile, populated by the sync
// worker from the auth service. Identity itself lives there; this row only
// carries what matchmaking needs.
type SiteUser struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Nickname     string  `gorm:"index;not null" json:"nickname"`
	Ntrp         string  `json:"ntrp,omitempty"`
	Address      string  `json:"address,omitempty"`
	ProfileImg   *string `json:"profile_img,omitempty"`
	PenaltyScore int     `gorm:"default:0" json:"penalty_score"`

	Timestamps
}

// Penalize adds the weight for the given penalty type to the user's score.
// Unknown types add nothing.
func (u *SiteUser) Penalize(t PenaltyType) {
	u.PenaltyScore += penaltyWeights[t]
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
