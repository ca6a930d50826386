// Package engine composes the order store, book index, matcher, and
// settlement executor behind one mutex. Every public mutating operation
// runs to completion as a single atomic unit, the serialization the host
// environment of the original contract provided for free.
package engine

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tokenmesh/hybridex/pkg/core/book"
	"github.com/tokenmesh/hybridex/pkg/core/ledger"
	"github.com/tokenmesh/hybridex/pkg/core/order"
	"github.com/tokenmesh/hybridex/pkg/storage"
	"github.com/tokenmesh/hybridex/pkg/util"
)

// Config wires the engine's collaborators. Ledger is required; everything
// else has a working default.
type Config struct {
	Ledger  ledger.TokenLedger
	Gate    AccessGate     // default AllowAll
	Store   *storage.Store // optional audit persistence
	Emitter Emitter        // default NopEmitter
	Logger  *zap.SugaredLogger
	Clock   util.Clock // default RealClock
}

// Engine owns the canonical order records and drives matching and
// settlement. Orders are never deleted: terminal orders stay in the store
// and the book sequences for audit and history queries.
type Engine struct {
	mu sync.Mutex

	gate   AccessGate
	ledger ledger.TokenLedger
	index  *book.Index
	store  *storage.Store
	emit   Emitter
	log    *zap.SugaredLogger
	clock  util.Clock

	orders  map[common.Hash]*order.Order
	byMaker map[common.Address][]common.Hash
	trades  []*order.Trade
}

func New(cfg Config) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("engine requires a token ledger")
	}
	if cfg.Gate == nil {
		cfg.Gate = AllowAll{}
	}
	if cfg.Emitter == nil {
		cfg.Emitter = NopEmitter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Clock == nil {
		cfg.Clock = util.RealClock{}
	}
	e := &Engine{
		gate:    cfg.Gate,
		ledger:  cfg.Ledger,
		index:   book.NewIndex(),
		store:   cfg.Store,
		emit:    cfg.Emitter,
		log:     cfg.Logger,
		clock:   cfg.Clock,
		orders:  make(map[common.Hash]*order.Order),
		byMaker: make(map[common.Address][]common.Hash),
	}
	if e.store != nil {
		if err := e.recover(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// recover rebuilds the order maps, the per-pair books, and the trade
// history from the audit store, so a restarted node serves the state it
// shut down with. Open orders rejoin their live queues in creation order;
// terminal orders are re-appended already retired.
func (e *Engine) recover() error {
	stored, err := e.store.AllOrders()
	if err != nil {
		return fmt.Errorf("recover orders: %w", err)
	}
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].CreatedAt != stored[j].CreatedAt {
			return stored[i].CreatedAt < stored[j].CreatedAt
		}
		return bytes.Compare(stored[i].ID.Bytes(), stored[j].ID.Bytes()) < 0
	})
	for _, o := range stored {
		e.orders[o.ID] = o
		e.byMaker[o.Maker] = append(e.byMaker[o.Maker], o.ID)
		e.index.Append(o)
		if o.Status != order.Open {
			e.index.Retire(o)
		}
	}

	trades, err := e.store.AllTrades()
	if err != nil {
		return fmt.Errorf("recover trades: %w", err)
	}
	e.trades = trades

	if len(stored) > 0 || len(trades) > 0 {
		e.log.Infow("state_recovered", "orders", len(stored), "trades", len(trades))
	}
	return nil
}

// CreateOrder records a new Open order, appends it to its pair's book, and
// immediately attempts one match against the opposite side. On a transfer
// failure during settlement the entire call aborts: the new order is not
// recorded and the counter-order stays Open, matching the all-or-nothing
// revert of the on-chain original.
func (e *Engine) CreateOrder(maker, tokenIn, tokenOut common.Address, amountIn, amountOut *big.Int, isBuyOrder bool) (common.Hash, error) {
	if err := e.gate.Permit(maker); err != nil {
		return common.Hash{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	side := order.Sell
	if isBuyOrder {
		side = order.Buy
	}
	o, err := order.New(maker, tokenIn, tokenOut, amountIn, amountOut, side, e.clock.Now().UnixNano())
	if err != nil {
		return common.Hash{}, err
	}
	if _, dup := e.orders[o.ID]; dup {
		return common.Hash{}, fmt.Errorf("order id collision: %s", o.ID.Hex())
	}

	e.orders[o.ID] = o
	e.byMaker[maker] = append(e.byMaker[maker], o.ID)
	e.index.Append(o)

	// Snapshot the creation event before matching can flip the status.
	createdEv := orderEvent(EventOrderCreated, o)

	trade, counter, err := e.tryMatch(o)
	if err != nil {
		// The new order never existed observably: unwind the insertion.
		e.index.Unwind(o)
		delete(e.orders, o.ID)
		ids := e.byMaker[maker]
		e.byMaker[maker] = ids[:len(ids)-1]
		e.log.Warnw("order_rejected", "maker", maker.Hex(), "err", err)
		return common.Hash{}, err
	}

	e.persistOrder(o)
	e.emit.Emit(ChannelOrders, createdEv)
	e.log.Infow("order_created",
		"order", o.ID.Hex(), "maker", maker.Hex(), "side", side.String(),
		"token_in", tokenIn.Hex(), "token_out", tokenOut.Hex())

	if trade != nil {
		e.persistOrder(counter)
		e.persistTrade(trade)
		e.trades = append(e.trades, trade)
		e.emit.Emit(ChannelOrders, orderEvent(EventOrderFilled, o))
		e.emit.Emit(ChannelOrders, orderEvent(EventOrderFilled, counter))
		e.emit.Emit(ChannelTrades, TradeEvent{Type: EventTradeExecuted, Trade: trade})
		e.log.Infow("trade_executed",
			"trade", trade.ID, "taker_order", trade.TakerOrder.Hex(),
			"maker_order", trade.MakerOrder.Hex(), "price", trade.Price.String())
	}
	return o.ID, nil
}

// CancelOrder moves an Open order to Cancelled. Only the maker may cancel,
// and only once; no funds move because none were escrowed.
func (e *Engine) CancelOrder(id common.Hash, caller common.Address) error {
	if err := e.gate.Permit(caller); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	if o.Maker != caller {
		return order.ErrUnauthorized
	}
	if err := o.Cancel(); err != nil {
		return err
	}
	e.index.Retire(o)
	e.persistOrder(o)
	e.emit.Emit(ChannelOrders, orderEvent(EventOrderCancelled, o))
	e.log.Infow("order_cancelled", "order", id.Hex(), "maker", caller.Hex())
	return nil
}

// persistOrder writes the order's current state to the audit store.
// Persistence is best-effort: the in-memory state is authoritative and a
// storage fault must not unwind a committed settlement.
func (e *Engine) persistOrder(o *order.Order) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveOrder(o); err != nil {
		e.log.Errorw("order_persist_failed", "order", o.ID.Hex(), "err", err)
	}
}

func (e *Engine) persistTrade(t *order.Trade) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveTrade(t); err != nil {
		e.log.Errorw("trade_persist_failed", "trade", t.ID, "err", err)
	}
}
