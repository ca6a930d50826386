// Package storage persists the engine's audit trail: every order at every
// status transition, and every executed trade. Orders are never deleted;
// the store is the durable counterpart of the in-memory book sequences.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenmesh/hybridex/pkg/core/order"
)

type Store struct {
	db *pebble.DB
}

// NewStore opens (or creates) the Pebble database at path.
func NewStore(path string) (*Store, error) {
	opts := &pebble.Options{
		Cache:        pebble.NewCache(64 << 20),
		MemTableSize: 32 << 20,
		MaxOpenFiles: 1000,
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble db at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveOrder writes the order's current state, plus an ownership marker for
// maker range scans. Called on creation and again on every status change.
func (s *Store) SaveOrder(o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", o.ID.Hex(), err)
	}
	if err := s.db.Set(orderKey(o.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("save order %s: %w", o.ID.Hex(), err)
	}
	if err := s.db.Set(makerKey(o.Maker, o.ID), nil, pebble.Sync); err != nil {
		return fmt.Errorf("save order owner marker %s: %w", o.ID.Hex(), err)
	}
	return nil
}

// LoadOrder returns the stored order, or (nil, nil) if unknown.
func (s *Store) LoadOrder(id common.Hash) (*order.Order, error) {
	data, closer, err := s.db.Get(orderKey(id))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id.Hex(), err)
	}
	defer closer.Close()

	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order %s: %w", id.Hex(), err)
	}
	return &o, nil
}

// OrderIDsByMaker scans the ownership markers for all ids ever created by maker.
func (s *Store) OrderIDsByMaker(maker common.Address) ([]common.Hash, error) {
	prefix := makerPrefix(maker)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate orders of %s: %w", maker.Hex(), err)
	}
	defer iter.Close()

	var ids []common.Hash
	for iter.First(); iter.Valid(); iter.Next() {
		idHex := string(iter.Key()[len(prefix):])
		ids = append(ids, common.HexToHash(idHex))
	}
	return ids, iter.Error()
}

// AllOrders returns every stored order in its latest state. Order of the
// result is the key order (by id), not creation order.
func (s *Store) AllOrders() ([]*order.Order, error) {
	prefix := []byte(prefixOrder)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	defer iter.Close()

	var orders []*order.Order
	for iter.First(); iter.Valid(); iter.Next() {
		var o order.Order
		if err := json.Unmarshal(iter.Value(), &o); err != nil {
			return nil, fmt.Errorf("unmarshal order %s: %w", iter.Key(), err)
		}
		orders = append(orders, &o)
	}
	return orders, iter.Error()
}

// SaveTrade appends an executed trade to the audit trail.
func (s *Store) SaveTrade(t *order.Trade) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trade %s: %w", t.ID, err)
	}
	if err := s.db.Set(tradeKey(t.ExecutedAt, t.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("save trade %s: %w", t.ID, err)
	}
	return nil
}

// AllTrades returns every stored trade in execution order, oldest first.
func (s *Store) AllTrades() ([]*order.Trade, error) {
	prefix := tradePrefix()
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	defer iter.Close()

	var trades []*order.Trade
	for iter.First(); iter.Valid(); iter.Next() {
		var t order.Trade
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			return nil, fmt.Errorf("unmarshal trade: %w", err)
		}
		trades = append(trades, &t)
	}
	return trades, iter.Error()
}

// RecentTrades returns up to limit trades, most recent first.
func (s *Store) RecentTrades(limit int) ([]*order.Trade, error) {
	prefix := tradePrefix()
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	defer iter.Close()

	var trades []*order.Trade
	for iter.Last(); iter.Valid() && len(trades) < limit; iter.Prev() {
		var t order.Trade
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			return nil, fmt.Errorf("unmarshal trade: %w", err)
		}
		trades = append(trades, &t)
	}
	return trades, iter.Error()
}
