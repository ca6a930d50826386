package book

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenmesh/hybridex/pkg/core/order"
)

var (
	maker1 = common.HexToAddress("0x1000000000000000000000000000000000000001")
	maker2 = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokA   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokB   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tokC   = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func mkOrder(t *testing.T, maker common.Address, in, out common.Address, side order.Side, ts int64) *order.Order {
	t.Helper()
	o, err := order.New(maker, in, out, big.NewInt(100), big.NewInt(50), side, ts)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	return o
}

func TestPairOfCanonical(t *testing.T) {
	if PairOf(tokA, tokB) != PairOf(tokB, tokA) {
		t.Error("pair key depends on argument order")
	}
	if PairOf(tokA, tokB) == PairOf(tokA, tokC) {
		t.Error("distinct pairs share a key")
	}
}

func TestAppendAndView(t *testing.T) {
	ix := NewIndex()

	buy := mkOrder(t, maker1, tokA, tokB, order.Buy, 1)
	sell := mkOrder(t, maker2, tokB, tokA, order.Sell, 2)
	ix.Append(buy)
	ix.Append(sell)

	buys, sells := ix.View(tokA, tokB)
	if len(buys) != 1 || len(sells) != 1 {
		t.Fatalf("view = %d buys, %d sells; want 1 and 1", len(buys), len(sells))
	}
	if buys[0].ID != buy.ID || sells[0].ID != sell.ID {
		t.Error("view returned wrong orders")
	}

	// Same book regardless of token argument order.
	buys2, sells2 := ix.View(tokB, tokA)
	if len(buys2) != 1 || len(sells2) != 1 {
		t.Error("reversed-argument view differs")
	}
}

func TestViewKeepsTerminalEntries(t *testing.T) {
	ix := NewIndex()

	buy := mkOrder(t, maker1, tokA, tokB, order.Buy, 1)
	ix.Append(buy)

	if err := buy.Cancel(); err != nil {
		t.Fatal(err)
	}
	ix.Retire(buy)

	buys, _ := ix.View(tokA, tokB)
	if len(buys) != 1 {
		t.Fatalf("audit sequence lost a terminal entry: %d", len(buys))
	}
	if buys[0].Status != order.Cancelled {
		t.Errorf("status = %v, want Cancelled", buys[0].Status)
	}
}

func TestRetireRemovesFromLiveQueue(t *testing.T) {
	ix := NewIndex()

	s1 := mkOrder(t, maker1, tokB, tokA, order.Sell, 1)
	s2 := mkOrder(t, maker2, tokB, tokA, order.Sell, 2)
	ix.Append(s1)
	ix.Append(s2)

	incomingBuy := mkOrder(t, maker1, tokA, tokB, order.Buy, 3)

	open := ix.OpenOpposite(incomingBuy)
	if len(open) != 2 {
		t.Fatalf("open opposite = %d, want 2", len(open))
	}
	// Oldest first.
	if open[0].ID != s1.ID || open[1].ID != s2.ID {
		t.Error("live queue not in insertion order")
	}

	ix.Retire(s1)
	open = ix.OpenOpposite(incomingBuy)
	if len(open) != 1 || open[0].ID != s2.ID {
		t.Errorf("after retire, open opposite = %v", open)
	}

	// Retiring twice is harmless.
	ix.Retire(s1)
}

func TestUnwindRemovesAuditEntry(t *testing.T) {
	ix := NewIndex()

	s1 := mkOrder(t, maker1, tokB, tokA, order.Sell, 1)
	s2 := mkOrder(t, maker2, tokB, tokA, order.Sell, 2)
	ix.Append(s1)
	ix.Append(s2)

	ix.Unwind(s2)

	_, sells := ix.View(tokA, tokB)
	if len(sells) != 1 || sells[0].ID != s1.ID {
		t.Errorf("unwind left wrong sequence: %v", sells)
	}

	incomingBuy := mkOrder(t, maker1, tokA, tokB, order.Buy, 3)
	if open := ix.OpenOpposite(incomingBuy); len(open) != 1 {
		t.Errorf("unwound order still live: %d", len(open))
	}
}

func TestOpenOppositeSelectsOtherSide(t *testing.T) {
	ix := NewIndex()

	buy := mkOrder(t, maker1, tokA, tokB, order.Buy, 1)
	sell := mkOrder(t, maker2, tokB, tokA, order.Sell, 2)
	ix.Append(buy)
	ix.Append(sell)

	if open := ix.OpenOpposite(buy); len(open) != 1 || open[0].ID != sell.ID {
		t.Error("buy should see the sell side")
	}
	if open := ix.OpenOpposite(sell); len(open) != 1 || open[0].ID != buy.ID {
		t.Error("sell should see the buy side")
	}
}

func TestUnknownPairIsEmpty(t *testing.T) {
	ix := NewIndex()
	buys, sells := ix.View(tokA, tokC)
	if buys != nil || sells != nil {
		t.Error("unknown pair should return nil sequences")
	}
}
