// Package orderbook implements the in-memory limit order book: two
// priced queues (bids, asks), an id index for O(1) cancel lookup, and
// the cancellation mechanism. It owns all resting orders; the matching
// engine drives it but never reaches into its internals.
package orderbook

import (
	"container/list"
	"errors"

	"matchcore/domain"
)

var (
	// ErrOrderNotFound means no order with that id has ever rested in
	// this book, or it was already fully consumed by a match and its
	// index entry reclaimed.
	ErrOrderNotFound = errors.New("orderbook: order not found")

	// ErrOrderAlreadyCancelled means a prior Cancel call already
	// succeeded for this id.
	ErrOrderAlreadyCancelled = errors.New("orderbook: order already cancelled")

	// ErrDuplicateOrderID is returned by Add when an id is already
	// resting. This book chooses to reject rather than silently
	// overwrite.
	ErrDuplicateOrderID = errors.New("orderbook: duplicate order id")
)

// indexEntry is the book-internal bookkeeping an id->(side, price)
// index needs. It is kept out of domain.Order, rather than storing a
// list.Element directly on it, so Order remains a plain value type
// once resting.
type indexEntry struct {
	side  domain.Side
	level *priceLevel
	elem  *list.Element
}

// OrderBook is the resting-order state for a single instrument. It is
// not safe for concurrent use on its own — the matching engine is the
// single writer and is responsible for the lease discipline.
type OrderBook struct {
	bids  *priceLevels
	asks  *priceLevels
	index map[domain.OrderID]*indexEntry

	// cancelled remembers ids that were successfully cancelled, purely
	// so a second Cancel call on the same id can report
	// ErrOrderAlreadyCancelled instead of ErrOrderNotFound — a richer
	// signal than collapsing both into "not found". Callers are
	// responsible for id uniqueness within an engine's lifetime, so this
	// set never needs to be reclaimed.
	cancelled map[domain.OrderID]struct{}
}

// New creates an empty order book.
func New() *OrderBook {
	return &OrderBook{
		bids:      newPriceLevels(true),
		asks:      newPriceLevels(false),
		index:     make(map[domain.OrderID]*indexEntry),
		cancelled: make(map[domain.OrderID]struct{}),
	}
}

func (ob *OrderBook) levelsFor(side domain.Side) *priceLevels {
	if side == domain.SideBuy {
		return ob.bids
	}
	return ob.asks
}

// Add places a resting limit order at the tail of its price level
// (unless out-of-order entry times require an earlier slot; see
// priceLevel.insert) and records it in the id index.
func (ob *OrderBook) Add(order *domain.Order) error {
	if _, exists := ob.index[order.ID]; exists {
		return ErrDuplicateOrderID
	}

	levels := ob.levelsFor(order.Side)
	level := levels.getOrCreate(order.Price)
	elem := level.insert(order)

	ob.index[order.ID] = &indexEntry{side: order.Side, level: level, elem: elem}
	delete(ob.cancelled, order.ID)
	return nil
}

// RestoreHead re-rests a partially filled maker at the head of its
// price level, preserving its original entry-time priority. The maker
// has already been popped, so if that pop drained its level the level
// is created again here.
func (ob *OrderBook) RestoreHead(order *domain.Order) {
	levels := ob.levelsFor(order.Side)
	level := levels.getOrCreate(order.Price)
	elem := level.insertHead(order)
	ob.index[order.ID] = &indexEntry{side: order.Side, level: level, elem: elem}
}

// PeekBestBuy returns the highest-priority resting buy order without
// removing it, or nil if there are no resting buys.
func (ob *OrderBook) PeekBestBuy() *domain.Order {
	return peek(ob.bids)
}

// PeekBestSell returns the highest-priority resting sell order without
// removing it, or nil if there are no resting sells.
func (ob *OrderBook) PeekBestSell() *domain.Order {
	return peek(ob.asks)
}

func peek(levels *priceLevels) *domain.Order {
	level := levels.bestLevel()
	if level == nil {
		return nil
	}
	return level.front()
}

// PopBestBuy removes and returns the highest-priority resting buy
// order, or nil if there are no resting buys.
func (ob *OrderBook) PopBestBuy() *domain.Order {
	return ob.pop(ob.bids)
}

// PopBestSell removes and returns the highest-priority resting sell
// order, or nil if there are no resting sells.
func (ob *OrderBook) PopBestSell() *domain.Order {
	return ob.pop(ob.asks)
}

func (ob *OrderBook) pop(levels *priceLevels) *domain.Order {
	level := levels.bestLevel()
	if level == nil {
		return nil
	}
	order := level.front()
	entry := ob.index[order.ID]
	level.removeElem(entry.elem, order.Quantity)
	delete(ob.index, order.ID)
	levels.dropIfEmpty(level)
	return order
}

// Cancel removes a resting order identified only by its id. The lookup
// and the removal from its level are O(1) regardless of whether the
// order is currently the best on its side; dropping a level that the
// removal emptied is O(log P).
func (ob *OrderBook) Cancel(id domain.OrderID) (domain.Order, error) {
	entry, ok := ob.index[id]
	if !ok {
		if _, wasCancelled := ob.cancelled[id]; wasCancelled {
			return domain.Order{}, ErrOrderAlreadyCancelled
		}
		return domain.Order{}, ErrOrderNotFound
	}

	order := entry.elem.Value.(*domain.Order)
	snapshot := order.Clone()

	levels := ob.levelsFor(entry.side)
	entry.level.removeElem(entry.elem, order.Quantity)
	levels.dropIfEmpty(entry.level)

	delete(ob.index, id)
	ob.cancelled[id] = struct{}{}
	order.Release()

	return snapshot, nil
}

// BestBid returns the highest resting buy price and whether one exists.
func (ob *OrderBook) BestBid() (int64, bool) {
	level := ob.bids.bestLevel()
	if level == nil {
		return 0, false
	}
	return level.price, true
}

// BestAsk returns the lowest resting sell price and whether one exists.
func (ob *OrderBook) BestAsk() (int64, bool) {
	level := ob.asks.bestLevel()
	if level == nil {
		return 0, false
	}
	return level.price, true
}

// SnapshotBuys returns a value-copy of all resting buy orders, sorted
// best-first — the same order PopBestBuy would produce them in.
func (ob *OrderBook) SnapshotBuys() []domain.Order {
	return snapshot(ob.bids)
}

// SnapshotSells returns a value-copy of all resting sell orders, sorted
// best-first — the same order PopBestSell would produce them in.
func (ob *OrderBook) SnapshotSells() []domain.Order {
	return snapshot(ob.asks)
}

func snapshot(levels *priceLevels) []domain.Order {
	var out []domain.Order
	levels.ascending(func(level *priceLevel) bool {
		for e := level.orders.Front(); e != nil; e = e.Next() {
			out = append(out, e.Value.(*domain.Order).Clone())
		}
		return true
	})
	return out
}

// DepthLevel is one row of a market-depth snapshot.
type DepthLevel struct {
	Price    int64
	Quantity int64
	Orders   int
}

// Depth returns up to maxLevels price levels on each side, best first.
// This is a supplemental, read-only aggregate view.
func (ob *OrderBook) Depth(maxLevels int) (bids, asks []DepthLevel) {
	return depthOf(ob.bids, maxLevels), depthOf(ob.asks, maxLevels)
}

func depthOf(levels *priceLevels, maxLevels int) []DepthLevel {
	if maxLevels <= 0 {
		return nil
	}
	out := make([]DepthLevel, 0, maxLevels)
	levels.ascending(func(level *priceLevel) bool {
		out = append(out, DepthLevel{Price: level.price, Quantity: level.volume, Orders: level.orders.Len()})
		return len(out) < maxLevels
	})
	return out
}
