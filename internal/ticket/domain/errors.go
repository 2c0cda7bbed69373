package domain

import "errors"

var (
	// ErrTicketNotFound is returned when a ticket does not exist
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketNotAvailable is returned when a purchase targets a ticket
	// that is already held, cancelled, or otherwise not available
	ErrTicketNotAvailable = errors.New("ticket is not available")

	// ErrNoInventory is returned when an event has no available tickets left
	ErrNoInventory = errors.New("no tickets available for event")

	// ErrInsufficientInventory is returned when a batch purchase asks for
	// more tickets than remain available
	ErrInsufficientInventory = errors.New("not enough tickets available for event")

	// ErrNotHolder is returned when a cancellation is attempted by a user
	// that does not hold the ticket, or the ticket is not in a held state
	ErrNotHolder = errors.New("ticket is not held by this user")

	// ErrInvalidQuantity is returned when a batch purchase quantity is out of range
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 100")

	// ErrInvalidTicketID is returned when a ticket id is empty or malformed
	ErrInvalidTicketID = errors.New("invalid ticket id")

	// ErrInvalidEventID is returned when an event id is empty or malformed
	ErrInvalidEventID = errors.New("invalid event id")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

// IsConflictError checks if the error reflects an allocation conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrTicketNotAvailable) ||
		errors.Is(err, ErrNoInventory) ||
		errors.Is(err, ErrInsufficientInventory)
}

// IsForbiddenError checks if the error is a holder mismatch
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrNotHolder)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidTicketID) ||
		errors.Is(err, ErrInvalidEventID)
}
