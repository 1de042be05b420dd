package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrInvalidState     = errors.New("invalid order state")
	ErrValidationFailed = errors.New("validation failed")
)

// Remote check failures. Both match ErrValidationFailed with errors.Is.
var (
	ErrCustomerNotFound      = fmt.Errorf("%w: customer not found", ErrValidationFailed)
	ErrInsufficientInventory = fmt.Errorf("%w: insufficient inventory", ErrValidationFailed)
)

// ErrStatusChanged is returned by a conditional write whose expected status no
// longer matches the stored one. It matches ErrInvalidState.
var ErrStatusChanged = fmt.Errorf("%w: status changed concurrently", ErrInvalidState)
