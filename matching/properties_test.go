package matching

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/domain"
)

// TestPropertyNoCrossedBook checks that after any sequence of submits
// and cancels, no resting buy price is >= any resting sell price.
func TestPropertyNoCrossedBook(t *testing.T) {
	me := New()
	r := rand.New(rand.NewSource(1))

	var liveIDs []domain.OrderID
	for i := 0; i < 2000; i++ {
		if len(liveIDs) > 0 && r.Intn(5) == 0 {
			id := liveIDs[r.Intn(len(liveIDs))]
			me.CancelOrder(id)
			continue
		}

		side := domain.SideBuy
		if r.Intn(2) == 0 {
			side = domain.SideSell
		}
		id := domain.OrderID(fmt.Sprintf("o%d", i))
		price := int64(900 + r.Intn(200))
		qty := int64(1 + r.Intn(50))

		_, err := me.SubmitOrder(domain.NewLimitOrder(id, side, price, qty, int64(i)))
		require.NoError(t, err)
		liveIDs = append(liveIDs, id)

		assertNoCrossedBook(t, me)
	}
}

func assertNoCrossedBook(t *testing.T, me *MatchingEngine) {
	t.Helper()
	bids := me.SnapshotBids()
	asks := me.SnapshotAsks()
	if len(bids) == 0 || len(asks) == 0 {
		return
	}
	assert.Less(t, bids[0].Price, asks[0].Price, "book is crossed: best bid %d, best ask %d", bids[0].Price, asks[0].Price)
}

// TestPropertyPriorityCorrectness checks that each snapshot is ordered
// best-priced first, with earliest-time breaking ties at each price.
func TestPropertyPriorityCorrectness(t *testing.T) {
	me := New()
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 500; i++ {
		price := int64(100 + r.Intn(20))
		_, err := me.SubmitOrder(domain.NewLimitOrder(domain.OrderID(fmt.Sprintf("b%d", i)), domain.SideBuy, price, 1, int64(i)))
		require.NoError(t, err)
	}

	bids := me.SnapshotBids()
	require.NotEmpty(t, bids)
	for i := 1; i < len(bids); i++ {
		prev, cur := bids[i-1], bids[i]
		if prev.Price == cur.Price {
			assert.Less(t, prev.EntryTime, cur.EntryTime)
		} else {
			assert.Greater(t, prev.Price, cur.Price)
		}
	}
}

// TestPropertyQuantityConservation checks that a single submission's
// trades never total more than the taker's original quantity, and that
// a maker's quantity decrement equals the sum of trade quantities
// against it.
func TestPropertyQuantityConservation(t *testing.T) {
	me := New()

	_, err := me.SubmitOrder(domain.NewLimitOrder("m1", domain.SideSell, 1000, 60, 1))
	require.NoError(t, err)
	_, err = me.SubmitOrder(domain.NewLimitOrder("m2", domain.SideSell, 1000, 40, 2))
	require.NoError(t, err)

	takerQty := int64(150)
	trades, err := me.SubmitOrder(domain.NewLimitOrder("taker", domain.SideBuy, 1000, takerQty, 3))
	require.NoError(t, err)

	var total int64
	perMaker := map[domain.OrderID]int64{}
	for _, tr := range trades {
		total += tr.Quantity
		perMaker[tr.SellOrderID] += tr.Quantity
	}

	assert.LessOrEqual(t, total, takerQty)
	assert.Equal(t, int64(60), perMaker["m1"])
	assert.Equal(t, int64(40), perMaker["m2"])

	bids := me.SnapshotBids()
	require.Len(t, bids, 1)
	assert.Equal(t, takerQty-total, bids[0].Quantity)
}

// TestPropertyQuantityConservationFullFill checks the equality branch:
// total traded equals the taker's quantity iff it was fully filled and
// not rested.
func TestPropertyQuantityConservationFullFill(t *testing.T) {
	me := New()
	_, err := me.SubmitOrder(domain.NewLimitOrder("m1", domain.SideSell, 1000, 100, 1))
	require.NoError(t, err)

	trades, err := me.SubmitOrder(domain.NewLimitOrder("taker", domain.SideBuy, 1000, 100, 2))
	require.NoError(t, err)

	var total int64
	for _, tr := range trades {
		total += tr.Quantity
	}
	assert.Equal(t, int64(100), total)
	assert.Empty(t, me.SnapshotBids())
}

// TestPropertyTapeMonotonicity checks that trades appear on the tape
// in the same order they were returned to callers.
func TestPropertyTapeMonotonicity(t *testing.T) {
	me := New()
	var allReturned []domain.Trade

	for i := 0; i < 50; i++ {
		_, err := me.SubmitOrder(domain.NewLimitOrder(domain.OrderID(fmt.Sprintf("s%d", i)), domain.SideSell, 1000, 10, int64(2*i)))
		require.NoError(t, err)

		trades, err := me.SubmitOrder(domain.NewLimitOrder(domain.OrderID(fmt.Sprintf("b%d", i)), domain.SideBuy, 1000, 10, int64(2*i+1)))
		require.NoError(t, err)
		allReturned = append(allReturned, trades...)
	}

	tape := me.Trades()
	require.Len(t, tape, len(allReturned))
	for i := range tape {
		assert.Equal(t, allReturned[i], tape[i])
	}
	for i := 1; i < len(tape); i++ {
		assert.Less(t, tape[i-1].Sequence, tape[i].Sequence)
	}
}

// TestPropertyCancelIdempotence checks that cancel(id); cancel(id)
// never succeeds twice.
func TestPropertyCancelIdempotence(t *testing.T) {
	me := New()
	_, err := me.SubmitOrder(domain.NewLimitOrder("a", domain.SideBuy, 1000, 10, 1))
	require.NoError(t, err)

	_, firstErr := me.CancelOrder("a")
	_, secondErr := me.CancelOrder("a")

	assert.NoError(t, firstErr)
	assert.Error(t, secondErr)
}

// TestPropertyCancelInvisibility checks that after a successful
// cancel, the order's id never appears in a later snapshot or trade.
func TestPropertyCancelInvisibility(t *testing.T) {
	me := New()
	_, err := me.SubmitOrder(domain.NewLimitOrder("victim", domain.SideSell, 1000, 100, 1))
	require.NoError(t, err)

	_, err = me.CancelOrder("victim")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		trades, err := me.SubmitOrder(domain.NewLimitOrder(domain.OrderID(fmt.Sprintf("buy%d", i)), domain.SideBuy, 1000, 5, int64(i+2)))
		require.NoError(t, err)
		for _, tr := range trades {
			assert.NotEqual(t, domain.OrderID("victim"), tr.SellOrderID)
		}
	}

	for _, o := range me.SnapshotAsks() {
		assert.NotEqual(t, domain.OrderID("victim"), o.ID)
	}
}
