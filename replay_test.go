package folioplan

import "testing"

func TestNewFlow_Directions(t *testing.T) {
	buy, err := NewFlow("buy", Q(10), EUR(500))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := buy.Quantity, Q(10); !got.Equal(want) {
		t.Errorf("buy quantity = %v, want %v", got, want)
	}

	sell, err := NewFlow("sell", Q(10), EUR(500))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sell.Quantity, Q(-10); !got.Equal(want) {
		t.Errorf("sell quantity = %v, want %v", got, want)
	}
	if got, want := sell.Principal, EUR(-500); !got.Equal(want) {
		t.Errorf("sell principal = %v, want %v", got, want)
	}

	// empty direction means the deltas are already signed.
	raw, err := NewFlow("", Q(-3), EUR(-100))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := raw.Quantity, Q(-3); !got.Equal(want) {
		t.Errorf("raw quantity = %v, want %v", got, want)
	}

	if _, err := NewFlow("short", Q(1), EUR(1)); err == nil {
		t.Error("NewFlow(short) = nil error, want rejection")
	}
}

func TestReplay_LedgerInvariants(t *testing.T) {
	prev := Holding{Quantity: Q(10), TotalCost: EUR(1000), MarketValue: EUR(1200)}
	flow := Flow{Quantity: Q(5), Principal: EUR(650)}

	h := Replay(CategorySecurity, EUR(130), prev, flow)
	if got, want := h.Quantity, Q(15); !got.Equal(want) {
		t.Errorf("quantity = %v, want %v", got, want)
	}
	if got, want := h.TotalCost, EUR(1650); !got.Equal(want) {
		t.Errorf("total cost = %v, want %v", got, want)
	}
	if got, want := h.MarketValue, EUR(1950); !got.Equal(want) {
		t.Errorf("market value = %v, want %v", got, want)
	}
}

func TestReplay_CashLikePinsPrice(t *testing.T) {
	prev := Holding{Quantity: Q(1000), TotalCost: EUR(1000)}
	flow := Flow{Quantity: Q(500), Principal: EUR(500)}

	// the supplied price is ignored for cash-like categories.
	h := Replay(CategoryWealth, EUR(42), prev, flow)
	if got, want := h.MarketValue, EUR(1500); !got.Equal(want) {
		t.Errorf("market value = %v, want %v", got, want)
	}
}

func TestImpliedInterest(t *testing.T) {
	// Savings balance grew 1000 → 1015 with only 10 deposited: 5 interest.
	flow := Flow{Quantity: Q(15), Principal: EUR(10)}
	if got, want := ImpliedInterest(CategoryWealth, flow), EUR(5); !got.Equal(want) {
		t.Errorf("implied interest = %v, want %v", got, want)
	}

	// Negative residual is a fee.
	fee := Flow{Quantity: Q(-2), Principal: EUR(0)}
	if got, want := ImpliedInterest(CategoryFixedIncome, fee), EUR(-2); !got.Equal(want) {
		t.Errorf("implied fee = %v, want %v", got, want)
	}

	// Non-cash categories carry their gain in the price, never as interest.
	if got := ImpliedInterest(CategorySecurity, flow); !got.IsZero() {
		t.Errorf("security implied interest = %v, want 0", got)
	}
}

func TestReplayRecord_ChainsFromHistory(t *testing.T) {
	first := snapshot("2024-01", record("X", CategorySecurity, 100, 10, 1000))
	history := []*Snapshot{first}

	asset := Asset{ID: "X", Name: "World ETF", Category: CategorySecurity}
	flow, _ := NewFlow("buy", Q(2), EUR(230))
	r := ReplayRecord(history, month("2024-02"), asset, EUR(115), flow)

	if got, want := r.Quantity, Q(12); !got.Equal(want) {
		t.Errorf("quantity = %v, want %v", got, want)
	}
	if got, want := r.TotalCost, EUR(1230); !got.Equal(want) {
		t.Errorf("total cost = %v, want %v", got, want)
	}
	if got, want := r.MarketValue, EUR(1380); !got.Equal(want) {
		t.Errorf("market value = %v, want %v", got, want)
	}
	if got, want := r.AddedQuantity, Q(2); !got.Equal(want) {
		t.Errorf("added quantity = %v, want %v", got, want)
	}
	if r.Name != "World ETF" {
		t.Errorf("name = %q, want the asset name cached on the record", r.Name)
	}
}

func TestReplayRecord_NoHistoryStartsFromZero(t *testing.T) {
	asset := Asset{ID: "X", Category: CategorySecurity}
	flow, _ := NewFlow("buy", Q(4), EUR(400))
	r := ReplayRecord(nil, month("2024-01"), asset, EUR(100), flow)
	if got, want := r.TotalCost, EUR(400); !got.Equal(want) {
		t.Errorf("total cost = %v, want %v", got, want)
	}
	if got, want := r.MarketValue, EUR(400); !got.Equal(want) {
		t.Errorf("market value = %v, want %v", got, want)
	}
}

func TestReplayRecord_CashLikeUnitPrice(t *testing.T) {
	asset := Asset{ID: "cash", Category: CategoryWealth}
	flow, _ := NewFlow("", Q(100), EUR(100))
	r := ReplayRecord(nil, month("2024-01"), asset, EUR(7), flow)
	if got, want := r.UnitPrice, EUR(1); !got.Equal(want) {
		t.Errorf("unit price = %v, want pinned %v", got, want)
	}
}
