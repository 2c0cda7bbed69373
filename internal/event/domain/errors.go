package domain

import "errors"

// Domain errors
var (
	// Event errors
	ErrEventNotFound  = errors.New("event not found")
	ErrEventImmutable = errors.New("event is finished or cancelled and cannot be modified")

	// Lifecycle errors
	ErrNotPublishable = errors.New("event cannot be published from its current state")
	ErrNotCancellable = errors.New("event cannot be cancelled from its current state")
	ErrNotFinishable  = errors.New("event cannot be finished from its current state")

	// Validation errors
	ErrInvalidTitle    = errors.New("title is required")
	ErrInvalidCapacity = errors.New("capacity cannot be negative")
	ErrInvalidPrice    = errors.New("price cannot be negative")
	ErrInvalidEventID  = errors.New("invalid event id")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// IsStateConflictError checks if the error is an illegal lifecycle transition
func IsStateConflictError(err error) bool {
	return errors.Is(err, ErrNotPublishable) ||
		errors.Is(err, ErrNotCancellable) ||
		errors.Is(err, ErrNotFinishable) ||
		errors.Is(err, ErrEventImmutable)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTitle) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidEventID)
}
