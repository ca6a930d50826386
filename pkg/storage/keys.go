package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Pebble key schema:
//
//	ord:<orderID>                    → Order (latest state)
//	mkr:<address>:<orderID>          → order ownership marker (range scans)
//	trade:<timestamp>:<tradeID>      → Trade
//
// Timestamps are zero-padded to 20 digits so trade keys sort
// lexicographically by execution time.
const (
	prefixOrder = "ord:"
	prefixMaker = "mkr:"
	prefixTrade = "trade:"
)

func orderKey(id common.Hash) []byte {
	return []byte(prefixOrder + id.Hex())
}

func makerKey(maker common.Address, id common.Hash) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixMaker, maker.Hex(), id.Hex()))
}

func makerPrefix(maker common.Address) []byte {
	return []byte(fmt.Sprintf("%s%s:", prefixMaker, maker.Hex()))
}

func tradeKey(executedAt int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", prefixTrade, executedAt, id))
}

func tradePrefix() []byte {
	return []byte(prefixTrade)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
