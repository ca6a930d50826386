package order

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Side says which way an order trades, defined relative to TokenOut:
// a Buy accumulates TokenOut, a Sell disposes of TokenIn to get TokenOut.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Status is the order lifecycle state. Open is the only non-terminal state;
// Filled and Cancelled are terminal and an order never leaves them.
type Status int8

const (
	Open Status = iota
	Filled
	Cancelled
)

func (st Status) String() string {
	switch st {
	case Open:
		return "open"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Order is a standing instruction to trade AmountIn of TokenIn for at least
// AmountOut of TokenOut. All fields except Status are immutable after creation.
type Order struct {
	ID        common.Hash    `json:"id"`
	Maker     common.Address `json:"maker"`
	TokenIn   common.Address `json:"tokenIn"`
	TokenOut  common.Address `json:"tokenOut"`
	AmountIn  *big.Int       `json:"amountIn"`
	AmountOut *big.Int       `json:"amountOut"`
	Side      Side           `json:"side"`
	CreatedAt int64          `json:"createdAt"` // unix nanoseconds, id derivation + audit only
	Status    Status         `json:"status"`
}

// New validates the order terms and builds an Open order with a
// deterministic id. TokenIn and TokenOut must differ and both amounts
// must be strictly positive.
func New(maker, tokenIn, tokenOut common.Address, amountIn, amountOut *big.Int, side Side, createdAt int64) (*Order, error) {
	if tokenIn == tokenOut {
		return nil, ErrInvalidPair
	}
	if amountIn == nil || amountOut == nil || amountIn.Sign() <= 0 || amountOut.Sign() <= 0 {
		return nil, ErrInvalidAmounts
	}

	o := &Order{
		Maker:     maker,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: new(big.Int).Set(amountOut),
		Side:      side,
		CreatedAt: createdAt,
		Status:    Open,
	}
	o.ID = deriveID(o)
	return o, nil
}

// deriveID hashes the order's identity fields, keccak over the packed bytes
// of (maker, tokenIn, tokenOut, amountIn, amountOut, createdAt). Amounts are
// left-padded to 32 bytes so the packing is unambiguous.
func deriveID(o *Order) common.Hash {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(o.CreatedAt))
	return crypto.Keccak256Hash(
		o.Maker.Bytes(),
		o.TokenIn.Bytes(),
		o.TokenOut.Bytes(),
		common.LeftPadBytes(o.AmountIn.Bytes(), 32),
		common.LeftPadBytes(o.AmountOut.Bytes(), 32),
		ts[:],
	)
}

// Fill moves the order to Filled. Only an Open order can be filled.
func (o *Order) Fill() error {
	if o.Status != Open {
		return ErrInvalidState
	}
	o.Status = Filled
	return nil
}

// Cancel moves the order to Cancelled. Only an Open order can be cancelled.
func (o *Order) Cancel() error {
	if o.Status != Open {
		return ErrInvalidState
	}
	o.Status = Cancelled
	return nil
}

// Clone returns a value copy whose amounts do not alias the original's.
func (o *Order) Clone() Order {
	c := *o
	c.AmountIn = new(big.Int).Set(o.AmountIn)
	c.AmountOut = new(big.Int).Set(o.AmountOut)
	return c
}

// Mirrors reports whether two orders trade the same pair in opposite
// directions: one's TokenIn is the other's TokenOut and vice versa.
func Mirrors(a, b *Order) bool {
	return a.TokenIn == b.TokenOut && a.TokenOut == b.TokenIn
}

// Crosses is the price-compatibility test between a buy and a sell on
// mirrored pairs. The buy offers buy.AmountIn of X for at least
// buy.AmountOut of Y; the sell offers sell.AmountIn of Y for at least
// sell.AmountOut of X. The buyer's bid is buy.AmountIn/buy.AmountOut
// X per Y, the seller's ask is sell.AmountOut/sell.AmountIn X per Y;
// they cross iff bid >= ask, cross-multiplied so the comparison stays
// exact with no division:
//
//	buy.AmountIn * sell.AmountIn >= buy.AmountOut * sell.AmountOut
func Crosses(buy, sell *Order) bool {
	lhs := new(big.Int).Mul(buy.AmountIn, sell.AmountIn)
	rhs := new(big.Int).Mul(buy.AmountOut, sell.AmountOut)
	return lhs.Cmp(rhs) >= 0
}
