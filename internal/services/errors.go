package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrSessionBlocked     = errors.New("session is blocked")

	ErrPaperNotFound = errors.New("paper not found or access denied")
	ErrNoSections    = errors.New("at least one section (required or custom) must be selected")
)

// UpstreamError marks a failure of one of the external collaborators
// (completion, humanizer, search) so handlers can map it to 502.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service failure: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
