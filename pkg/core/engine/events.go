package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenmesh/hybridex/pkg/core/order"
)

// Broadcast channels for engine events.
const (
	ChannelOrders = "orders"
	ChannelTrades = "trades"
)

type EventType string

const (
	EventOrderCreated   EventType = "order_created"
	EventOrderFilled    EventType = "order_filled"
	EventOrderCancelled EventType = "order_cancelled"
	EventTradeExecuted  EventType = "trade_executed"
)

// OrderEvent signals an order lifecycle transition. FillAmount is set only on
// order_filled; under full-fill semantics it always equals the order's
// AmountIn.
type OrderEvent struct {
	Type       EventType      `json:"type"`
	OrderID    common.Hash    `json:"orderId"`
	Maker      common.Address `json:"maker"`
	TokenIn    common.Address `json:"tokenIn"`
	TokenOut   common.Address `json:"tokenOut"`
	Side       string         `json:"side"`
	Status     string         `json:"status"`
	FillAmount *big.Int       `json:"fillAmount,omitempty"`
}

// TradeEvent signals a completed settlement.
type TradeEvent struct {
	Type  EventType    `json:"type"`
	Trade *order.Trade `json:"trade"`
}

// Emitter receives engine events for fan-out to subscribers. Emit must not
// block: the engine calls it while holding its operation lock.
type Emitter interface {
	Emit(channel string, event any)
}

// NopEmitter drops all events.
type NopEmitter struct{}

func (NopEmitter) Emit(string, any) {}

func orderEvent(t EventType, o *order.Order) OrderEvent {
	ev := OrderEvent{
		Type:     t,
		OrderID:  o.ID,
		Maker:    o.Maker,
		TokenIn:  o.TokenIn,
		TokenOut: o.TokenOut,
		Side:     o.Side.String(),
		Status:   o.Status.String(),
	}
	if t == EventOrderFilled {
		ev.FillAmount = new(big.Int).Set(o.AmountIn)
	}
	return ev
}
