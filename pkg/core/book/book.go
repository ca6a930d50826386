package book

import (
	"bytes"
	"container/list"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tokenmesh/hybridex/pkg/core/order"
)

// PairKey identifies one shared book per token pair, independent of the
// order the two tokens are named in.
type PairKey = common.Hash

// PairOf canonicalizes (a, b) by byte order before hashing, so
// PairOf(A, B) == PairOf(B, A).
func PairOf(a, b common.Address) PairKey {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes())
}

// Book holds both sides of one pair's order book.
//
// Each side keeps two views of the same orders:
//   - an append-only sequence for audit and snapshots. Entries are never
//     physically removed; only their Status changes.
//   - a live FIFO queue holding just the Open orders, with an element index
//     for O(1) unlink when an order fills or is cancelled. Match scans walk
//     this queue oldest-first and never touch dead entries.
type Book struct {
	Key PairKey

	buys  []*order.Order
	sells []*order.Order

	liveBuys  *list.List
	liveSells *list.List
	liveIndex map[common.Hash]*list.Element
}

func newBook(key PairKey) *Book {
	return &Book{
		Key:       key,
		liveBuys:  list.New(),
		liveSells: list.New(),
		liveIndex: make(map[common.Hash]*list.Element),
	}
}

func (b *Book) append(o *order.Order) {
	if o.Side == order.Buy {
		b.buys = append(b.buys, o)
		b.liveIndex[o.ID] = b.liveBuys.PushBack(o)
	} else {
		b.sells = append(b.sells, o)
		b.liveIndex[o.ID] = b.liveSells.PushBack(o)
	}
}

// retire unlinks an order from its live queue once it leaves Open.
// The audit sequences keep the entry.
func (b *Book) retire(id common.Hash) {
	el, ok := b.liveIndex[id]
	if !ok {
		return
	}
	delete(b.liveIndex, id)
	o := el.Value.(*order.Order)
	if o.Side == order.Buy {
		b.liveBuys.Remove(el)
	} else {
		b.liveSells.Remove(el)
	}
}

// unwind physically removes an order that was appended during a call that
// later aborted. Only valid for the most recent append on its side.
func (b *Book) unwind(o *order.Order) {
	b.retire(o.ID)
	if o.Side == order.Buy {
		if n := len(b.buys); n > 0 && b.buys[n-1].ID == o.ID {
			b.buys = b.buys[:n-1]
		}
	} else {
		if n := len(b.sells); n > 0 && b.sells[n-1].ID == o.ID {
			b.sells = b.sells[:n-1]
		}
	}
}

// openOpposite returns the Open orders on the side opposite o, in insertion
// order (oldest first).
func (b *Book) openOpposite(o *order.Order) []*order.Order {
	live := b.liveSells
	if o.Side == order.Sell {
		live = b.liveBuys
	}
	out := make([]*order.Order, 0, live.Len())
	for el := live.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*order.Order))
	}
	return out
}
