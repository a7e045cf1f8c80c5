package services

import (
	"errors"
	"fmt"
)

// PermissionError signals that the caller's roles do not allow the operation.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// ConflictError signals that a state transition lost to a concurrent writer,
// e.g. deciding a request that was already decided.
type ConflictError struct {
	Resource   string
	ResourceID uint
	Reason     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %d: %s", e.Resource, e.ResourceID, e.Reason)
}

func NewConflictError(resource string, resourceID uint, reason string) *ConflictError {
	return &ConflictError{Resource: resource, ResourceID: resourceID, Reason: reason}
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

var (
	// ErrLastAdmin guards against removing the only remaining admin account.
	ErrLastAdmin = errors.New("cannot remove the last admin")

	// ErrInvalidCredentials covers both unknown user and bad password so the
	// two cases are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInviteInvalid covers unknown, expired and already-used invite codes.
	ErrInviteInvalid = errors.New("invite code is invalid or expired")

	ErrUserExists = errors.New("user name or email already taken")
)
