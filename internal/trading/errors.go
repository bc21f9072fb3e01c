package trading

import "errors"

var (
	ErrLocationRequired = errors.New("location required")
	ErrForbidden        = errors.New("not a participant of this trade session")
	ErrSessionNotActive = errors.New("trade session is not active")
	ErrInvalidState     = errors.New("trade session already closed")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrCollaborator     = errors.New("collaborator unavailable")
)
