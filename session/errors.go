package session

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrNoCurrentUser      = errors.New("no user logged in")
	ErrRegistrationClosed = errors.New("user registration is disabled")
	ErrSyncDisabled       = errors.New("cloud sync is disabled for this user")
	ErrParse              = errors.New("invalid document JSON")
)
