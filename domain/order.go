// Package domain holds the immutable value types shared by the order
// book and the matching engine: orders, trades, and the price-time
// priority comparators that are the engine's only source of ordering
// truth.
package domain

import "sync"

// Side is the side of the book an order rests on.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// OrderType distinguishes resting limit orders from non-resting market
// orders.
type OrderType int

const (
	OrderTypeLimit OrderType = iota
	OrderTypeMarket
)

func (t OrderType) String() string {
	if t == OrderTypeLimit {
		return "limit"
	}
	return "market"
}

// OrderID is an opaque, caller-assigned identifier. Uniqueness within an
// engine instance is the caller's responsibility.
type OrderID string

// Order is a single order: id, side, type, price, quantity, entry
// time. Quantity is decremented in place by the matching loop as fills
// occur; callers that need an immutable receipt should copy the value
// before it rests.
//
// Memory layout: hot fields used on every comparison (Price, Quantity,
// EntryTime, Side) are grouped first for cache locality.
type Order struct {
	Price     int64
	Quantity  int64
	EntryTime int64
	Side      Side
	Type      OrderType
	ID        OrderID
}

var orderPool = sync.Pool{
	New: func() any { return &Order{} },
}

// NewLimitOrder constructs a resting limit order.
func NewLimitOrder(id OrderID, side Side, price, quantity, entryTime int64) *Order {
	o := orderPool.Get().(*Order)
	o.ID = id
	o.Side = side
	o.Type = OrderTypeLimit
	o.Price = price
	o.Quantity = quantity
	o.EntryTime = entryTime
	return o
}

// NewMarketOrder constructs a market order. Its price is always zero and
// it is never stored in a price level.
func NewMarketOrder(id OrderID, side Side, quantity, entryTime int64) *Order {
	o := orderPool.Get().(*Order)
	o.ID = id
	o.Side = side
	o.Type = OrderTypeMarket
	o.Price = 0
	o.Quantity = quantity
	o.EntryTime = entryTime
	return o
}

// Clone returns an independent value-copy, used whenever an Order
// crosses a snapshot or receipt boundary so the caller cannot observe
// (or cause) further mutation by the matching loop.
func (o *Order) Clone() Order {
	return *o
}

// Release returns the order to the pool. Callers must not touch the
// order after calling Release. The book and engine call this once an
// order has been fully consumed by matching or cancelled.
func (o *Order) Release() {
	*o = Order{}
	orderPool.Put(o)
}

// CanMatch reports whether o (the incoming taker) is eligible to match
// against other (a resting maker):
//   - the sides must differ
//   - if both are limit orders, the buy side's price must be at or
//     above the sell side's price
//   - a market order on either side always crosses (contingent on the
//     opposing side being non-empty, which is the caller's concern)
func (o *Order) CanMatch(other *Order) bool {
	if o.Side == other.Side {
		return false
	}
	if o.Type == OrderTypeMarket || other.Type == OrderTypeMarket {
		return true
	}

	buy, sell := o, other
	if o.Side == SideSell {
		buy, sell = other, o
	}
	return buy.Price >= sell.Price
}

// CompareBuys orders two resting buy orders by price-time priority:
// higher price wins, ties broken by smaller entry time.
func CompareBuys(a, b *Order) int {
	if a.Price != b.Price {
		if a.Price > b.Price {
			return -1
		}
		return 1
	}
	return compareEntryTime(a, b)
}

// CompareSells orders two resting sell orders by price-time priority:
// lower price wins, ties broken by smaller entry time.
func CompareSells(a, b *Order) int {
	if a.Price != b.Price {
		if a.Price < b.Price {
			return -1
		}
		return 1
	}
	return compareEntryTime(a, b)
}

func compareEntryTime(a, b *Order) int {
	if a.EntryTime == b.EntryTime {
		return 0
	}
	if a.EntryTime < b.EntryTime {
		return -1
	}
	return 1
}
