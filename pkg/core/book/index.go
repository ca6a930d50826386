package book

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenmesh/hybridex/pkg/core/order"
)

// Index maps canonical pair keys to their books. It does no pricing; it
// exists to give the matcher a bounded candidate set per pair.
type Index struct {
	mu    sync.RWMutex
	books map[PairKey]*Book
}

func NewIndex() *Index {
	return &Index{books: make(map[PairKey]*Book)}
}

// Append inserts the order into its pair's book on the sequence matching
// its side, creating the book on first use.
func (ix *Index) Append(o *order.Order) PairKey {
	key := PairOf(o.TokenIn, o.TokenOut)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	b, ok := ix.books[key]
	if !ok {
		b = newBook(key)
		ix.books[key] = b
	}
	b.append(o)
	return key
}

// Retire drops the order from its live queue after a fill or cancel.
// The audit sequences are untouched.
func (ix *Index) Retire(o *order.Order) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if b, ok := ix.books[PairOf(o.TokenIn, o.TokenOut)]; ok {
		b.retire(o.ID)
	}
}

// Unwind removes an order appended by a call that aborted before committing.
func (ix *Index) Unwind(o *order.Order) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if b, ok := ix.books[PairOf(o.TokenIn, o.TokenOut)]; ok {
		b.unwind(o)
	}
}

// OpenOpposite returns the Open orders on the side opposite o, oldest first.
func (ix *Index) OpenOpposite(o *order.Order) []*order.Order {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	b, ok := ix.books[PairOf(o.TokenIn, o.TokenOut)]
	if !ok {
		return nil
	}
	return b.openOpposite(o)
}

// View returns both sequences of the pair's book verbatim, non-Open entries
// included; callers filter by status. The slices are copies so readers never
// alias the index's internals.
func (ix *Index) View(tokenA, tokenB common.Address) (buys, sells []*order.Order) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	b, ok := ix.books[PairOf(tokenA, tokenB)]
	if !ok {
		return nil, nil
	}
	buys = make([]*order.Order, len(b.buys))
	copy(buys, b.buys)
	sells = make([]*order.Order, len(b.sells))
	copy(sells, b.sells)
	return buys, sells
}
