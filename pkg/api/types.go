package api

// Request/response types for the REST endpoints and WebSocket messages.
// Token amounts travel as base-10 strings; 256-bit values don't fit JSON
// numbers.

// CreateOrderRequest submits a new limit order.
type CreateOrderRequest struct {
	Maker      string `json:"maker"`
	TokenIn    string `json:"tokenIn"`
	TokenOut   string `json:"tokenOut"`
	AmountIn   string `json:"amountIn"`
	AmountOut  string `json:"amountOut"`
	IsBuyOrder bool   `json:"isBuyOrder"`
}

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

// CancelOrderRequest cancels an open order. Caller must be the maker.
type CancelOrderRequest struct {
	OrderID string `json:"orderId"`
	Caller  string `json:"caller"`
}

// OrderInfo is the wire form of an order record.
type OrderInfo struct {
	ID        string `json:"id"`
	Maker     string `json:"maker"`
	TokenIn   string `json:"tokenIn"`
	TokenOut  string `json:"tokenOut"`
	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`
	Side      string `json:"side"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

// OrderBookResponse carries both sides of a pair's book, terminal entries
// included.
type OrderBookResponse struct {
	Buys  []OrderInfo `json:"buys"`
	Sells []OrderInfo `json:"sells"`
}

// TradeInfo is the wire form of an executed trade.
type TradeInfo struct {
	ID          string `json:"id"`
	Pair        string `json:"pair"`
	TakerOrder  string `json:"takerOrder"`
	MakerOrder  string `json:"makerOrder"`
	Taker       string `json:"taker"`
	Maker       string `json:"maker"`
	TakerAmount string `json:"takerAmount"`
	MakerAmount string `json:"makerAmount"`
	Price       string `json:"price"`
	ExecutedAt  int64  `json:"executedAt"`
}

// MintRequest credits devnet ledger balance (DevFaucet only).
type MintRequest struct {
	Token  string `json:"token"`
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

// ApproveRequest sets the engine's devnet ledger allowance (DevFaucet only).
type ApproveRequest struct {
	Token  string `json:"token"`
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// WSSubscribeRequest is the client→server subscription message.
// Op is "subscribe" or "unsubscribe"; channels are "orders" and "trades".
type WSSubscribeRequest struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
}
