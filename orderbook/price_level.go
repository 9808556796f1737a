package orderbook

import (
	"container/list"

	"matchcore/domain"
)

// priceLevel is the FIFO of resting orders at one specific price on one
// side of the book — a "price level" per the glossary.
type priceLevel struct {
	price  int64
	orders *list.List // FIFO of *domain.Order, time priority front-to-back
	volume int64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price, orders: list.New()}
}

// insert appends order to the level, preserving FIFO order. The caller
// guarantees EntryTime is non-decreasing within a side in the common
// case, so the fast path is an O(1) tail append; if EntryTime is not
// monotonic (an unsynchronized wall clock, say), it scans back from the
// tail to the first position whose predecessor has a lesser-or-equal
// entry time, preserving strict time priority at the level regardless.
func (pl *priceLevel) insert(order *domain.Order) *list.Element {
	for e := pl.orders.Back(); e != nil; e = e.Prev() {
		existing := e.Value.(*domain.Order)
		if existing.EntryTime <= order.EntryTime {
			elem := pl.orders.InsertAfter(order, e)
			pl.volume += order.Quantity
			return elem
		}
	}
	elem := pl.orders.PushFront(order)
	pl.volume += order.Quantity
	return elem
}

// insertHead re-rests a partially filled maker at the front of its
// level: nothing overtook it while it was being matched against, so it
// keeps its original priority.
func (pl *priceLevel) insertHead(order *domain.Order) *list.Element {
	elem := pl.orders.PushFront(order)
	pl.volume += order.Quantity
	return elem
}

func (pl *priceLevel) removeElem(elem *list.Element, quantity int64) {
	pl.orders.Remove(elem)
	pl.volume -= quantity
}

func (pl *priceLevel) empty() bool {
	return pl.orders.Len() == 0
}

func (pl *priceLevel) front() *domain.Order {
	if pl.orders.Len() == 0 {
		return nil
	}
	return pl.orders.Front().Value.(*domain.Order)
}
