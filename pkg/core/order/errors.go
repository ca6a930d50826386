package order

import "errors"

// Engine error taxonomy. Every failure aborts the whole call with no partial
// state committed; none of these are retried internally.
var (
	// ErrInvalidPair means tokenIn and tokenOut are the same asset.
	ErrInvalidPair = errors.New("tokenIn and tokenOut must differ")

	// ErrInvalidAmounts means amountIn or amountOut is zero or negative.
	ErrInvalidAmounts = errors.New("amounts must be strictly positive")

	// ErrUnauthorized means the caller is not the order's maker.
	ErrUnauthorized = errors.New("caller is not the order maker")

	// ErrInvalidState means the order is no longer Open.
	ErrInvalidState = errors.New("order is not open")

	// ErrOrderNotFound means no order exists with the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrTransferFailed wraps a ledger transfer failure during settlement.
	ErrTransferFailed = errors.New("token transfer failed")
)
