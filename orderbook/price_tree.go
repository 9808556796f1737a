package orderbook

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// priceLevels is the ordered map of price -> FIFO deque backing one
// side of the book. A red-black tree keyed directly on price gives
// O(log P) insert/remove with no assumption about tick granularity,
// with the extremum cached so repeated best-price reads stay O(1)
// between mutations.
type priceLevels struct {
	tree *rbt.Tree[int64, *priceLevel]
	best *priceLevel
}

// newPriceLevels creates an empty ordered map. descending orders prices
// highest-first (bids); ascending orders them lowest-first (asks).
func newPriceLevels(descending bool) *priceLevels {
	cmp := func(a, b int64) int {
		switch {
		case a == b:
			return 0
		case descending == (a > b):
			return -1
		default:
			return 1
		}
	}
	return &priceLevels{tree: rbt.NewWith[int64, *priceLevel](cmp)}
}

// getOrCreate returns the level at price, creating and inserting an
// empty one if none exists yet.
func (pl *priceLevels) getOrCreate(price int64) *priceLevel {
	level, ok := pl.tree.Get(price)
	if ok {
		return level
	}
	level = newPriceLevel(price)
	pl.tree.Put(price, level)
	pl.refreshBest()
	return level
}

// dropIfEmpty removes level from the tree once its FIFO has drained:
// no empty level survives past the operation that drained it.
func (pl *priceLevels) dropIfEmpty(level *priceLevel) {
	if !level.empty() {
		return
	}
	pl.tree.Remove(level.price)
	pl.refreshBest()
}

func (pl *priceLevels) refreshBest() {
	if pl.tree.Empty() {
		pl.best = nil
		return
	}
	pl.best = pl.tree.Left().Value
}

// bestLevel returns the highest-priority price level on this side, or
// nil if the side is empty. O(1).
func (pl *priceLevels) bestLevel() *priceLevel {
	return pl.best
}

// levelAt returns the level at price if one is resting, for read-only
// inspection (e.g. market-depth queries at a specific price).
func (pl *priceLevels) levelAt(price int64) (*priceLevel, bool) {
	return pl.tree.Get(price)
}

// size is the number of distinct active price levels on this side.
func (pl *priceLevels) size() int {
	return pl.tree.Size()
}

// ascending walks levels in priority order, best first, stopping early
// if visit returns false.
func (pl *priceLevels) ascending(visit func(*priceLevel) bool) {
	it := pl.tree.Iterator()
	for it.Next() {
		if !visit(it.Value()) {
			return
		}
	}
}
