package models

import (
	"time"
)

// RecruitStatus is a Matching's lifecycle stage.
type RecruitStatus string

const (
	RecruitOpen         RecruitStatus = "OPEN"
	RecruitFull         RecruitStatus = "FULL"
	RecruitConfirmed    RecruitStatus = "CONFIRMED"
	RecruitFailed       RecruitStatus = "FAILED"
	RecruitWeatherIssue RecruitStatus = "WEATHER_ISSUE"
	RecruitFinished     RecruitStatus = "FINISHED"
)

// MatchingType distinguishes singles from doubles play.
type MatchingType string

const (
	MatchingSingle MatchingType = "SINGLE"
	MatchingDouble MatchingType = "DOUBLE"
)

// recruitTransitions is the allowed status graph. FULL can fall back to
// OPEN when a seat frees or an organizer edit resets acceptances; FAILED
// and FINISHED are terminal; WEATHER_ISSUE only ever moves to FINISHED.
var recruitTransitions = map[RecruitStatus][]RecruitStatus{
	RecruitOpen:         {RecruitFull, RecruitFailed, RecruitWeatherIssue},
	RecruitFull:         {RecruitOpen, RecruitConfirmed, RecruitWeatherIssue},
	RecruitConfirmed:    {RecruitFinished},
	RecruitWeatherIssue: {RecruitFinished},
}

// Matching is a hosted event other users can request to join.
type Matching struct {
	ID            string        `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SiteUserID    string        `gorm:"index;not null" json:"site_user_id"` // organizer
	Title         string        `gorm:"not null" json:"title"`
	Content       string        `gorm:"type:text" json:"content"`
	Location      string        `gorm:"not null" json:"location"`
	Lat           float64       `gorm:"not null" json:"lat"`
	Lon           float64       `gorm:"not null" json:"lon"`
	ImageURL      string        `json:"image_url,omitempty"`
	Date          time.Time     `gorm:"index;not null" json:"date"` // match day, midnight local
	StartTime     time.Time     `gorm:"not null" json:"start_time"`
	EndTime       time.Time     `gorm:"not null" json:"end_time"`
	RecruitDue    time.Time     `gorm:"index;not null" json:"recruit_due"`
	RecruitNum    int           `gorm:"not null" json:"recruit_num"`
	AcceptedNum   int           `gorm:"default:0" json:"accepted_num"`
	Cost          int           `gorm:"default:0" json:"cost"`
	MatchingType  MatchingType  `gorm:"type:varchar(16);default:'SINGLE'" json:"matching_type"`
	Ntrp          string        `json:"ntrp,omitempty"`
	IsReserved    bool          `gorm:"default:false" json:"is_reserved"`
	RecruitStatus RecruitStatus `gorm:"type:varchar(16);default:'OPEN';index" json:"recruit_status"`

	Timestamps

	// Relationships
	SiteUser SiteUser `json:"organizer,omitempty" gorm:"foreignKey:SiteUserID"`
	Applies  []Apply  `json:"applies,omitempty" gorm:"foreignKey:MatchingID;constraint:OnDelete:CASCADE"`
}

// CanTransitionTo reports whether the status graph allows moving from the
// current recruit status to target.
func (m *Matching) CanTransitionTo(target RecruitStatus) bool {
	for _, next := range recruitTransitions[m.RecruitStatus] {
		if next == target {
			return true
		}
	}
	return false
}

// ChangeRecruitStatus applies a status transition, failing on anything the
// graph does not allow.
func (m *Matching) ChangeRecruitStatus(target RecruitStatus) error {
	if !m.CanTransitionTo(target) {
		return ErrInvalidStatusChange
	}
	m.RecruitStatus = target
	return nil
}

// IsOrganizer reports whether the given user created this matching.
func (m *Matching) IsOrganizer(userID string) bool {
	return m.SiteUserID == userID
}

// MatchingPreview is the lightweight projection used by list endpoints.
type MatchingPreview struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Location          string        `json:"location"`
	Lat               float64       `json:"lat"`
	Lon               float64       `json:"lon"`
	Date              time.Time     `json:"date"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	RecruitDue        time.Time     `json:"recruit_due"`
	RecruitNum        int           `json:"recruit_num"`
	AcceptedNum       int           `json:"accepted_num"`
	MatchingType      MatchingType  `json:"matching_type"`
	Ntrp              string        `json:"ntrp,omitempty"`
	RecruitStatus     RecruitStatus `json:"recruit_status"`
	OrganizerNickname string        `json:"organizer_nickname"`
	IsReserved        bool          `json:"is_reserved"`
}

// PreviewFromMatching maps a Matching (with preloaded organizer) to its
// list projection.
func PreviewFromMatching(m Matching) MatchingPreview {
	return MatchingPreview{
		ID:                m.ID,
		Title:             m.Title,
		Location:          m.Location,
		Lat:               m.Lat,
		Lon:               m.Lon,
		Date:              m.Date,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		RecruitDue:        m.RecruitDue,
		RecruitNum:        m.RecruitNum,
		AcceptedNum:       m.AcceptedNum,
		MatchingType:      m.MatchingType,
		Ntrp:              m.Ntrp,
		RecruitStatus:     m.RecruitStatus,
		OrganizerNickname: m.SiteUser.Nickname,
		IsReserved:        m.IsReserved,
	}
}

// MatchingDetail is the full projection returned by the detail endpoint.
type MatchingDetail struct {
	MatchingPreview
	Content          string `json:"content"`
	ImageURL         string `json:"image_url,omitempty"`
	Cost             int    `json:"cost"`
	OrganizerID      string `json:"organizer_id"`
	OrganizerNtrp    string `json:"organizer_ntrp,omitempty"`
	OrganizerAddress string `json:"organizer_address,omitempty"`
	OrganizerPenalty int    `json:"organizer_penalty_score"`
}

// DetailFromMatching maps a Matching (with preloaded organizer) to its
// detail projection.
func DetailFromMatching(m Matching) MatchingDetail {
	return MatchingDetail{
		MatchingPreview:  PreviewFromMatching(m),
		Content:          m.Content,
		ImageURL:         m.ImageURL,
		Cost:             m.Cost,
		OrganizerID:      m.SiteUserID,
		OrganizerNtrp:    m.SiteUser.Ntrp,
		OrganizerAddress: m.SiteUser.Address,
		OrganizerPenalty: m.SiteUser.PenaltyScore,
	}
}

// MatchingRequest carries the client-supplied fields for create and update.
type MatchingRequest struct {
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Location     string       `json:"location"`
	Date         time.Time    `json:"date"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      time.Time    `json:"end_time"`
	RecruitDue   time.Time    `json:"recruit_due"`
	RecruitNum   int          `json:"recruit_num"`
	Cost         int          `json:"cost"`
	MatchingType MatchingType `json:"matching_type"`
	Ntrp         string       `json:"ntrp"`
	IsReserved   bool         `json:"is_reserved"`
}

// ApplyRequestFields copies the request values onto the matching. Lat/lon
// and image are resolved by the service before this is called.
func (m *Matching) ApplyRequestFields(req MatchingRequest) {
	m.Title = req.Title
	m.Content = req.Content
	m.Location = req.Location
	m.Date = req.Date
	m.StartTime = req.StartTime
	m.EndTime = req.EndTime
	m.RecruitDue = req.RecruitDue
	m.RecruitNum = req.RecruitNum
	m.Cost = req.Cost
	m.MatchingType = req.MatchingType
	m.Ntrp = req.Ntrp
	m.IsReserved = req.IsReserved
}

// MatchingFilter narrows the list endpoint. Zero values mean "no criterion".
type MatchingFilter struct {
	Date         *time.Time   `json:"date,omitempty"`
	Region       string       `json:"region,omitempty"`
	MatchingType MatchingType `json:"matching_type,omitempty"`
	Ntrp         string       `json:"ntrp,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (f MatchingFilter) IsEmpty() bool {
	return f.Date == nil && f.Region == "" && f.MatchingType == "" && f.Ntrp == ""
}
