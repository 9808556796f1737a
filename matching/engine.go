// Package matching is the matching engine: it owns one order book and a
// bounded trade tape, runs the price-time priority matching state
// machine, and mediates concurrent access under a single-writer,
// multi-reader lease.
package matching

import (
	"sync"

	"go.uber.org/zap"

	"matchcore/domain"
	"matchcore/orderbook"
)

const defaultTradeTapeCapacity = 500

// Option configures a MatchingEngine at construction time.
type Option func(*MatchingEngine)

// WithTradeTapeCapacity overrides the default bounded trade tape size.
func WithTradeTapeCapacity(capacity int) Option {
	return func(me *MatchingEngine) { me.tape = newTradeTape(capacity) }
}

// WithLogger injects a structured logger. The zero value logs nothing
// (zap.NewNop), making observability an optional collaborator rather
// than a hard dependency.
func WithLogger(logger *zap.Logger) Option {
	return func(me *MatchingEngine) {
		if logger == nil {
			logger = zap.NewNop()
		}
		me.logger = logger
	}
}

// MatchingEngine is the engine for a single instrument. Submitting and
// cancelling orders are exclusive writers; snapshots and the trade tape
// are concurrent readers. A *MatchingEngine is safe to share across
// goroutines — callers hold the same handle, not a copy of the state —
// but exactly one instance should exist per instrument in a process.
type MatchingEngine struct {
	mu     sync.RWMutex
	book   *orderbook.OrderBook
	tape   *tradeTape
	logger *zap.Logger
}

// New creates a matching engine with an empty book and a fresh bounded
// trade tape (capacity 500 by default).
func New(opts ...Option) *MatchingEngine {
	me := &MatchingEngine{
		book:   orderbook.New(),
		tape:   newTradeTape(defaultTradeTapeCapacity),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(me)
	}
	return me
}

// SubmitOrder runs the incoming order through the matching state
// machine and returns the trades it produced, in the order they
// printed. The call is atomic from an observer's perspective: no other
// submission, cancellation, or snapshot read interleaves with it.
func (me *MatchingEngine) SubmitOrder(order *domain.Order) ([]domain.Trade, error) {
	if order.Quantity <= 0 {
		return nil, ErrInvalidOrder
	}

	me.mu.Lock()
	defer me.mu.Unlock()

	trades := me.run(order)
	id, side := order.ID, order.Side

	switch {
	case order.Quantity == 0:
		order.Release()
	case order.Type == domain.OrderTypeLimit:
		// Add cannot fail here: SubmitOrder is the only place a
		// new id enters the book, and ids are the caller's to keep
		// unique.
		_ = me.book.Add(order)
	default:
		// A market order with quantity remaining after matching is
		// silently dropped rather than rested.
		order.Release()
	}

	me.logger.Debug("order submitted",
		zap.String("id", string(id)),
		zap.String("side", side.String()),
		zap.Int("trades", len(trades)),
	)

	return trades, nil
}

// run is the matching state machine: repeatedly cross the taker against
// the best opposite resting order until it stops crossing or is
// exhausted. taker is mutated in place as it fills; the caller decides
// what to do with its remaining quantity once run returns.
func (me *MatchingEngine) run(taker *domain.Order) []domain.Trade {
	var trades []domain.Trade

	for taker.Quantity > 0 {
		maker := me.peekOpposite(taker.Side)
		if maker == nil || !taker.CanMatch(maker) {
			break
		}

		price := executionPrice(taker, maker)
		quantity := min(taker.Quantity, maker.Quantity)

		popped := me.popOpposite(taker.Side)
		makerID := popped.ID
		trade := me.tape.append(domain.NewTrade(taker.Side, taker.ID, makerID, price, quantity))
		trades = append(trades, trade)

		taker.Quantity -= quantity
		popped.Quantity -= quantity

		if popped.Quantity > 0 {
			// The partial maker re-rests at the head of its FIFO —
			// nothing overtook it while it was being matched.
			me.book.RestoreHead(popped)
		} else {
			popped.Release()
		}

		me.logger.Debug("fill",
			zap.String("taker", string(taker.ID)),
			zap.String("maker", string(makerID)),
			zap.Int64("price", price),
			zap.Int64("quantity", quantity),
		)
	}

	return trades
}

// executionPrice determines the price a fill executes at: a resting
// limit order's price wins whenever one side is a market order. The
// maker-is-market branch is unreachable in practice (a market order
// never rests to become a maker, see SubmitOrder's handling of a
// partially-filled market taker); it is kept here only for totality.
func executionPrice(taker, maker *domain.Order) int64 {
	if taker.Type == domain.OrderTypeMarket {
		return maker.Price
	}
	if maker.Type == domain.OrderTypeMarket {
		return taker.Price
	}
	return maker.Price
}

func (me *MatchingEngine) peekOpposite(side domain.Side) *domain.Order {
	if side == domain.SideBuy {
		return me.book.PeekBestSell()
	}
	return me.book.PeekBestBuy()
}

func (me *MatchingEngine) popOpposite(side domain.Side) *domain.Order {
	if side == domain.SideBuy {
		return me.book.PopBestSell()
	}
	return me.book.PopBestBuy()
}

// CancelOrder delegates to the order book's cancellation, returning a
// value-copy receipt of the order as it stood at the moment of
// cancellation.
func (me *MatchingEngine) CancelOrder(id domain.OrderID) (domain.Order, error) {
	me.mu.Lock()
	defer me.mu.Unlock()

	order, err := me.book.Cancel(id)
	if err != nil {
		return domain.Order{}, err
	}

	me.logger.Info("order cancelled", zap.String("id", string(id)))
	return order, nil
}

// SnapshotBids returns all resting buy orders, priority-sorted best
// first.
func (me *MatchingEngine) SnapshotBids() []domain.Order {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.book.SnapshotBuys()
}

// SnapshotAsks returns all resting sell orders, priority-sorted best
// first.
func (me *MatchingEngine) SnapshotAsks() []domain.Order {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.book.SnapshotSells()
}

// Depth returns up to maxLevels aggregated price levels on each side.
func (me *MatchingEngine) Depth(maxLevels int) (bids, asks []orderbook.DepthLevel) {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.book.Depth(maxLevels)
}

// Trades returns a chronological snapshot of the retained tail of the
// trade tape.
func (me *MatchingEngine) Trades() []domain.Trade {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.tape.snapshot()
}
