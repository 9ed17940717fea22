package domain

import "errors"

var (
	// Not-found family: a referenced entity does not exist or is not sellable.
	ErrMenuNotFound  = errors.New("no active menu for service date")
	ErrItemNotFound  = errors.New("menu item not found or unavailable")
	ErrOrderNotFound = errors.New("order not found")

	// Invalid-input family: client-correctable, never retried.
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCartLine = errors.New("cart line is missing a menu item id")
	ErrInvalidAction   = errors.New("unknown status action")

	// ErrIllegalTransition is a business-rule conflict, not a server fault.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrUnavailable covers transient store failures: timeouts, lost
	// connections, serialization losses under contention. Safe for the
	// caller to retry with backoff; the core never retries itself.
	ErrUnavailable = errors.New("store unavailable")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMenuNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsInvalidInput reports whether err is a malformed-request sentinel.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidCartLine) ||
		errors.Is(err, ErrInvalidAction)
}
