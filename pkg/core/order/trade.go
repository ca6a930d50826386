package order

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PriceScale is the fixed-point scale for execution prices: a price of
// 1e18 means one unit of the sell side's TokenIn per unit of its TokenOut.
var PriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Trade records a completed settlement between two orders. The taker is the
// order whose submission triggered the match; the maker is the resting
// counter-order. Trades are append-only audit records.
type Trade struct {
	ID         string         `json:"id"`
	Pair       common.Hash    `json:"pair"`
	TakerOrder common.Hash    `json:"takerOrder"`
	MakerOrder common.Hash    `json:"makerOrder"`
	Taker      common.Address `json:"taker"`
	Maker      common.Address `json:"maker"`
	// TakerAmount is what the taker paid (its order's AmountIn);
	// MakerAmount is what the maker paid in return.
	TakerAmount *big.Int `json:"takerAmount"`
	MakerAmount *big.Int `json:"makerAmount"`
	// Price is the sell side's implied ask, scaled by PriceScale:
	// sell.AmountOut * PriceScale / sell.AmountIn.
	Price      *big.Int `json:"price"`
	ExecutedAt int64    `json:"executedAt"` // unix nanoseconds
}
