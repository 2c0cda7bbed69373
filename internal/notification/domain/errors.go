package domain

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification does not exist
	// or does not belong to the requesting user
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrInvalidNotification is returned when a notification is missing
	// required fields
	ErrInvalidNotification = errors.New("notification must have a title and message")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotificationNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidNotification)
}
