package domain

// Trade is an immutable record of a single match. Sequence is the
// trade's position on the tape at append time, letting callers and
// tests observe tape ordering directly.
type Trade struct {
	BuyOrderID  OrderID
	SellOrderID OrderID
	Price       int64
	Quantity    int64
	Sequence    uint64
}

// NewTrade builds a trade for the given taker side. Buy-id and sell-id
// are assigned according to which side the taker is on.
func NewTrade(takerSide Side, takerID, makerID OrderID, price, quantity int64) Trade {
	if takerSide == SideBuy {
		return Trade{BuyOrderID: takerID, SellOrderID: makerID, Price: price, Quantity: quantity}
	}
	return Trade{BuyOrderID: makerID, SellOrderID: takerID, Price: price, Quantity: quantity}
}
