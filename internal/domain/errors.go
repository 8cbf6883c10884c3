package domain

import "errors"

// Session resolution errors
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrSessionExpired    = errors.New("session expired")
	ErrInvalidToken      = errors.New("invalid token")
	ErrProfileLoadFailed = errors.New("failed to load user profile")
)

// Account errors
var (
	ErrEmailExists     = errors.New("email already registered")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidRole     = errors.New("invalid role")
)

// Class errors
var (
	ErrClassNotFound   = errors.New("class not found")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("user is already enrolled")
	ErrNotEnrolled     = errors.New("user is not enrolled")
	ErrNotClassOwner   = errors.New("only the class instructor can perform this action")
	ErrInvalidCategory = errors.New("invalid class category")
	ErrInvalidSchedule = errors.New("class schedule is invalid")
)

// Video errors
var (
	ErrVideoNotFound = errors.New("video asset not found")
)
