package matching

import (
	"errors"

	"matchcore/orderbook"
)

// ErrInvalidOrder is returned by SubmitOrder when the order is rejected
// before entering the matching state machine: a non-positive quantity.
// No mutation to the book or tape occurs.
var ErrInvalidOrder = errors.New("matching: invalid order")

// ErrNotFound and ErrAlreadyCancelled are the cancel-only half of the
// taxonomy, delegated straight through from the order book.
var (
	ErrNotFound         = orderbook.ErrOrderNotFound
	ErrAlreadyCancelled = orderbook.ErrOrderAlreadyCancelled
)
