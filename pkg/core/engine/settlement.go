package engine

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/tokenmesh/hybridex/pkg/core/book"
	"github.com/tokenmesh/hybridex/pkg/core/order"
)

// settle executes a match between the triggering taker order and a resting
// maker order: two ledger transfers plus both status writes, committed as
// one unit. The engine never escrowed funds, so the transfers pull straight
// from the makers' pre-approved balances.
//
// Two-phase commit: if the second leg fails after the first succeeded, the
// first leg is refunded and both orders stay Open. Status writes happen only
// after both legs cleared.
//
// Caller holds e.mu.
func (e *Engine) settle(taker, maker *order.Order) (*order.Trade, error) {
	// Both orders must still be Open before any funds move. Checked here,
	// under the lock, so the status writes below cannot fail after the
	// transfers have cleared.
	if taker.Status != order.Open || maker.Status != order.Open {
		return nil, order.ErrInvalidState
	}

	// Leg 1: taker's offer to the maker.
	if err := e.ledger.TransferFrom(taker.TokenIn, taker.Maker, maker.Maker, taker.AmountIn); err != nil {
		return nil, fmt.Errorf("%w: taker leg: %v", order.ErrTransferFailed, err)
	}

	// Leg 2: maker's offer to the taker.
	if err := e.ledger.TransferFrom(maker.TokenIn, maker.Maker, taker.Maker, maker.AmountIn); err != nil {
		if rerr := e.ledger.Refund(taker.TokenIn, maker.Maker, taker.Maker, taker.AmountIn); rerr != nil {
			// Refund of a half-settled trade failed; the ledger is now
			// inconsistent with the book and needs operator attention.
			e.log.Errorw("settlement_refund_failed",
				"taker_order", taker.ID.Hex(), "maker_order", maker.ID.Hex(), "err", rerr)
		}
		return nil, fmt.Errorf("%w: maker leg: %v", order.ErrTransferFailed, err)
	}

	// Both legs cleared; commit the terminal states together. The Open
	// checks above make these infallible.
	_ = taker.Fill()
	_ = maker.Fill()
	e.index.Retire(taker)
	e.index.Retire(maker)

	sell := taker
	if taker.Side == order.Buy {
		sell = maker
	}

	return &order.Trade{
		ID:          uuid.NewString(),
		Pair:        book.PairOf(taker.TokenIn, taker.TokenOut),
		TakerOrder:  taker.ID,
		MakerOrder:  maker.ID,
		Taker:       taker.Maker,
		Maker:       maker.Maker,
		TakerAmount: new(big.Int).Set(taker.AmountIn),
		MakerAmount: new(big.Int).Set(maker.AmountIn),
		Price:       executionPrice(sell),
		ExecutedAt:  e.clock.Now().UnixNano(),
	}, nil
}

// executionPrice derives the fill price from the sell side's implied ask,
// scaled fixed-point: sell.AmountOut * PriceScale / sell.AmountIn.
func executionPrice(sell *order.Order) *big.Int {
	p := new(big.Int).Mul(sell.AmountOut, order.PriceScale)
	return p.Div(p, sell.AmountIn)
}
