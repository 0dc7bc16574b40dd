package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOrderID is returned when adding an order whose id is
	// already active. No index is mutated when this is returned.
	ErrDuplicateOrderID = errors.New("duplicate order id")

	// ErrUnknownOrderID is returned when modifying an order that does not
	// exist. Cancels of unknown orders are silent no-ops instead.
	ErrUnknownOrderID = errors.New("unknown order id")

	// ErrInvalidOrder is returned when an order fails field validation.
	ErrInvalidOrder = errors.New("invalid order")
)

func invalidOrder(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOrder, reason)
}
