package models

import "net/http"

// Error is a domain error rendered at the API boundary with its HTTP
// status. Services raise these at the point of detection and let them
// propagate; handlers map anything else to a 500.
type Error struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

var (
	ErrEmailNotFound = &Error{
		Code: "EMAIL_NOT_FOUND", Status: http.StatusNotFound,
		Message: "no user is registered under that email",
	}
	ErrUserNotFound = &Error{
		Code: "USER_NOT_FOUND", Status: http.StatusNotFound,
		Message: "user not found",
	}
	ErrMatchingNotFound = &Error{
		Code: "MATCHING_NOT_FOUND", Status: http.StatusNotFound,
		Message: "matching not found",
	}
	ErrApplyNotFound = &Error{
		Code: "APPLY_NOT_FOUND", Status: http.StatusNotFound,
		Message: "apply not found for this matching",
	}
	ErrLatAndLonNotFound = &Error{
		Code: "LAT_AND_LON_NOT_FOUND", Status: http.StatusNotFound,
		Message: "could not resolve coordinates for the given location",
	}
	ErrPermissionDenied = &Error{
		Code: "PERMISSION_DENIED_TO_EDIT_AND_DELETE_MATCHING", Status: http.StatusForbidden,
		Message: "only the organizer may edit, delete, or accept applies for a matching",
	}
	ErrAlreadyExistedApply = &Error{
		Code: "ALREADY_EXISTED_APPLY", Status: http.StatusBadRequest,
		Message: "you have already applied to this matching",
	}
	ErrRecruitNumOver = &Error{
		Code: "RECRUIT_NUM_OVER", Status: http.StatusBadRequest,
		Message: "accepting these applies would exceed the matching's capacity",
	}
	ErrInvalidStatusChange = &Error{
		Code: "INVALID_STATUS_CHANGE", Status: http.StatusConflict,
		Message: "the requested status change is not allowed",
	}
	ErrWeatherUnavailable = &Error{
		Code: "WEATHER_UNAVAILABLE", Status: http.StatusBadGateway,
		Message: "weather forecast is temporarily unavailable",
	}
)
