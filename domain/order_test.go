package domain

import "testing"

func TestCanMatch(t *testing.T) {
	cases := []struct {
		name string
		a, b *Order
		want bool
	}{
		{
			name: "same side never matches",
			a:    &Order{Side: SideBuy, Type: OrderTypeLimit, Price: 100},
			b:    &Order{Side: SideBuy, Type: OrderTypeLimit, Price: 100},
			want: false,
		},
		{
			name: "crossing limits match",
			a:    &Order{Side: SideBuy, Type: OrderTypeLimit, Price: 1050},
			b:    &Order{Side: SideSell, Type: OrderTypeLimit, Price: 1000},
			want: true,
		},
		{
			name: "non-crossing limits do not match",
			a:    &Order{Side: SideBuy, Type: OrderTypeLimit, Price: 900},
			b:    &Order{Side: SideSell, Type: OrderTypeLimit, Price: 1000},
			want: false,
		},
		{
			name: "equal price limits match (touching)",
			a:    &Order{Side: SideBuy, Type: OrderTypeLimit, Price: 1000},
			b:    &Order{Side: SideSell, Type: OrderTypeLimit, Price: 1000},
			want: true,
		},
		{
			name: "market taker always matches",
			a:    &Order{Side: SideBuy, Type: OrderTypeMarket},
			b:    &Order{Side: SideSell, Type: OrderTypeLimit, Price: 1_000_000},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.CanMatch(tc.b); got != tc.want {
				t.Errorf("CanMatch() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompareBuysPriceThenTime(t *testing.T) {
	higher := &Order{Price: 1050, EntryTime: 5}
	lower := &Order{Price: 1000, EntryTime: 1}
	if CompareBuys(higher, lower) >= 0 {
		t.Fatal("higher-priced buy should sort first regardless of entry time")
	}

	earlier := &Order{Price: 1000, EntryTime: 1}
	later := &Order{Price: 1000, EntryTime: 2}
	if CompareBuys(earlier, later) >= 0 {
		t.Fatal("at equal price, earlier entry time should sort first")
	}
}

func TestCompareSellsPriceThenTime(t *testing.T) {
	lower := &Order{Price: 1000, EntryTime: 5}
	higher := &Order{Price: 1050, EntryTime: 1}
	if CompareSells(lower, higher) >= 0 {
		t.Fatal("lower-priced sell should sort first regardless of entry time")
	}

	earlier := &Order{Price: 1000, EntryTime: 1}
	later := &Order{Price: 1000, EntryTime: 2}
	if CompareSells(earlier, later) >= 0 {
		t.Fatal("at equal price, earlier entry time should sort first")
	}
}

func TestNewTradeAssignsBySide(t *testing.T) {
	trade := NewTrade(SideBuy, "taker", "maker", 1000, 50)
	if trade.BuyOrderID != "taker" || trade.SellOrderID != "maker" {
		t.Fatalf("buy-side taker should be buy_order_id, got %+v", trade)
	}

	trade = NewTrade(SideSell, "taker", "maker", 1000, 50)
	if trade.SellOrderID != "taker" || trade.BuyOrderID != "maker" {
		t.Fatalf("sell-side taker should be sell_order_id, got %+v", trade)
	}
}

func TestOrderPoolReleaseResets(t *testing.T) {
	o := NewLimitOrder("id-1", SideBuy, 1000, 100, 1)
	o.Release()
	if o.ID != "" || o.Quantity != 0 {
		t.Fatal("Release should zero the order before returning it to the pool")
	}
}
