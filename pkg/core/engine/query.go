package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenmesh/hybridex/pkg/core/order"
)

// Read-only accessors. All return copies: callers never alias live engine
// state, and queries observe orders only between atomic operations.

// GetOrder returns the order with the given id.
func (e *Engine) GetOrder(id common.Hash) (order.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	return o.Clone(), nil
}

// GetOrderBook returns both sides of the pair's book, argument order
// irrelevant. Sequences include terminal entries; filter by Status.
func (e *Engine) GetOrderBook(tokenA, tokenB common.Address) (buys, sells []order.Order) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bptrs, sptrs := e.index.View(tokenA, tokenB)
	buys = make([]order.Order, len(bptrs))
	for i, o := range bptrs {
		buys[i] = o.Clone()
	}
	sells = make([]order.Order, len(sptrs))
	for i, o := range sptrs {
		sells[i] = o.Clone()
	}
	return buys, sells
}

// GetUserOrders returns every order id the user has ever created, in
// creation order.
func (e *Engine) GetUserOrders(user common.Address) []common.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.byMaker[user]
	out := make([]common.Hash, len(ids))
	copy(out, ids)
	return out
}

// RecentTrades returns up to limit trades, most recent first.
func (e *Engine) RecentTrades(limit int) []*order.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	if limit <= 0 || limit > len(e.trades) {
		limit = len(e.trades)
	}
	out := make([]*order.Trade, 0, limit)
	for i := len(e.trades) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, e.trades[i])
	}
	return out
}
