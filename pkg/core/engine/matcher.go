package engine

import (
	"github.com/tokenmesh/hybridex/pkg/core/order"
)

// tryMatch scans the opposite side of incoming's book in insertion order
// (oldest first) and settles against the first price-compatible candidate.
// This is deliberately FIFO-among-candidates, not best-price: the first
// crossing order wins regardless of whether a better price rests deeper in
// the book. One match attempt per submission; a match consumes both orders
// fully.
//
// Returns the trade and the matched counter-order, or (nil, nil, nil) when
// nothing crosses. A settlement error propagates with no status change on
// either order.
//
// Caller holds e.mu.
func (e *Engine) tryMatch(incoming *order.Order) (*order.Trade, *order.Order, error) {
	for _, cand := range e.index.OpenOpposite(incoming) {
		if cand.Status != order.Open {
			continue
		}
		if cand.Maker == incoming.Maker {
			continue // self-trade prevention
		}
		if !order.Mirrors(incoming, cand) {
			continue
		}

		buy, sell := incoming, cand
		if incoming.Side == order.Sell {
			buy, sell = cand, incoming
		}
		if !order.Crosses(buy, sell) {
			continue
		}

		trade, err := e.settle(incoming, cand)
		if err != nil {
			return nil, nil, err
		}
		return trade, cand, nil
	}
	return nil, nil, nil
}
