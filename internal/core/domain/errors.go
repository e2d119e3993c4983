package domain

import "errors"

// Authentication and authorization.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownRole        = errors.New("unknown role")
)

// Accounts.
var (
	ErrUserExists      = errors.New("email already registered")
	ErrAccountNotFound = errors.New("account not found")
	ErrNoProfileFields = errors.New("no valid fields to update")
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

// MaxPasswordBytes is the longest secret bcrypt accepts.
const MaxPasswordBytes = 72

// Artist applications.
var (
	ErrInvalidID             = errors.New("invalid id")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrApplicationNotPending = errors.New("application is not pending")
	ErrApplicationExists     = errors.New("you already have a pending or approved application")
	ErrReviewInProgress      = errors.New("application review already in progress")
)
