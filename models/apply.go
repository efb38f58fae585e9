package models

// ApplyStatus is the state of one user's participation request.
type ApplyStatus string

const (
	ApplyPending  ApplyStatus = "PENDING"
	ApplyAccepted ApplyStatus = "ACCEPTED"
	ApplyCanceled ApplyStatus = "CANCELED"
)

// applyTransitions: CANCELED is terminal; ACCEPTED falls back to PENDING
// only through an organizer edit.
var applyTransitions = map[ApplyStatus][]ApplyStatus{
	ApplyPending:  {ApplyAccepted, ApplyCanceled},
	ApplyAccepted: {ApplyPending, ApplyCanceled},
}

// Apply is one user's participation request for one Matching. The matching
// owns its applies (cascade delete); the applicant is only referenced.
type Apply struct {
	ID          string      `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchingID  string      `gorm:"index;not null" json:"matching_id"`
	SiteUserID  string      `gorm:"index;not null" json:"site_user_id"`
	ApplyStatus ApplyStatus `gorm:"type:varchar(16);default:'PENDING';index" json:"apply_status"`

	Timestamps

	SiteUser SiteUser `json:"applicant,omitempty" gorm:"foreignKey:SiteUserID"`
}

// CanTransitionTo reports whether the apply state machine allows moving to
// target from the current status.
func (a *Apply) CanTransitionTo(target ApplyStatus) bool {
	for _, next := range applyTransitions[a.ApplyStatus] {
		if next == target {
			return true
		}
	}
	return false
}

// ChangeApplyStatus applies a state transition, failing on anything the
// machine does not allow.
func (a *Apply) ChangeApplyStatus(target ApplyStatus) error {
	if !a.CanTransitionTo(target) {
		return ErrInvalidStatusChange
	}
	a.ApplyStatus = target
	return nil
}

// IsLive reports whether the apply still counts toward the matching, i.e.
// it has not been canceled.
func (a *Apply) IsLive() bool {
	return a.ApplyStatus != ApplyCanceled
}

// LiveApplyStatuses are the statuses that count toward a matching's seats
// and the one-live-apply-per-user rule. Kept in sync with IsLive.
func LiveApplyStatuses() []ApplyStatus {
	return []ApplyStatus{ApplyPending, ApplyAccepted}
}

// ApplyMember is an applicant summary shown in apply-contents responses.
type ApplyMember struct {
	ApplyID  string `json:"apply_id"`
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Ntrp     string `json:"ntrp,omitempty"`
}

// MemberFromApply maps an Apply (with preloaded applicant) to its summary.
func MemberFromApply(a Apply) ApplyMember {
	return ApplyMember{
		ApplyID:  a.ID,
		UserID:   a.SiteUserID,
		Nickname: a.SiteUser.Nickname,
		Ntrp:     a.SiteUser.Ntrp,
	}
}

// ApplyContents is the authorization-sensitive projection of a matching's
// application state. AppliedMembers is only populated for the organizer.
type ApplyContents struct {
	IsApplied       bool          `json:"is_applied"`
	ApplyNum        int64         `json:"apply_num"`
	RecruitNum      int           `json:"recruit_num"`
	AcceptedNum     int           `json:"accepted_num"`
	AppliedMembers  []ApplyMember `json:"applied_members,omitempty"`
	AcceptedMembers []ApplyMember `json:"accepted_members"`
}

// AcceptRequest carries the organizer's bulk accept/reject decision.
type AcceptRequest struct {
	PendingApplies  []string `json:"pending_applies"`
	AcceptedApplies []string `json:"accepted_applies"`
}
