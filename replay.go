package folioplan

import "fmt"

// Flow is the signed quantity and principal change recorded for one asset in
// one period. The engine only ever sees signed deltas; buy/sell direction is
// resolved at the input-collection layer (see NewFlow).
type Flow struct {
	Quantity  Quantity
	Principal Amount
}

// Holding is the cumulative state of one asset at a point in time.
type Holding struct {
	Quantity    Quantity
	TotalCost   Amount
	MarketValue Amount
}

// NewFlow resolves a buy/sell convenience direction into signed deltas.
// Direction "buy" (or "") keeps the deltas as given, "sell" negates them.
// This is the helper the CLI and REST write paths use before calling Replay.
func NewFlow(direction string, quantity Quantity, principal Amount) (Flow, error) {
	switch direction {
	case "", "buy":
		return Flow{Quantity: quantity, Principal: principal}, nil
	case "sell":
		return Flow{Quantity: quantity.Neg(), Principal: principal.Neg()}, nil
	default:
		return Flow{}, fmt.Errorf("unknown transaction direction: %q", direction)
	}
}

// Replay computes the current holding from the previous holding and the
// period's flow:
//
//	quantity  = previous quantity + flow quantity
//	totalCost = previous cost + flow principal
//	value     = quantity × unit price
//
// For cash-like categories the unit price is pinned to 1 regardless of the
// supplied price, so a quantity change unmatched by principal shows up as
// implied interest or fee.
func Replay(category AssetCategory, price Amount, prev Holding, flow Flow) Holding {
	if category.IsCashLike() {
		price = A(1, price.Currency())
	}
	quantity := prev.Quantity.Add(flow.Quantity)
	cost := prev.TotalCost.Add(flow.Principal)
	return Holding{
		Quantity:    quantity,
		TotalCost:   cost,
		MarketValue: price.Mul(quantity),
	}
}

// ImpliedInterest returns, for cash-like categories, the part of the period's
// quantity change not explained by principal: positive for interest, negative
// for fees. It is zero for all other categories, where price moves carry the
// gain instead.
func ImpliedInterest(category AssetCategory, flow Flow) Amount {
	if !category.IsCashLike() {
		return Amount{}
	}
	// unit price is 1, so the quantity delta is a monetary delta.
	growth := A(flow.Quantity.Decimal(), flow.Principal.Currency())
	return growth.Sub(flow.Principal)
}

// ReplayRecord rebuilds a full HoldingRecord from its flow inputs and the
// snapshot history, enforcing the ledger invariants. It is the write-path
// companion of Replay: history is the full snapshot list, m the month being
// edited.
func ReplayRecord(history []*Snapshot, m Month, asset Asset, price Amount, flow Flow) HoldingRecord {
	prev := PreviousHolding(history, m, asset.ID)
	h := Replay(asset.Category, price, prev, flow)
	unitPrice := price
	if asset.Category.IsCashLike() {
		unitPrice = A(1, price.Currency())
	}
	return HoldingRecord{
		AssetID:        asset.ID,
		Name:           asset.Name,
		Category:       asset.Category,
		UnitPrice:      unitPrice,
		Quantity:       h.Quantity,
		MarketValue:    h.MarketValue,
		TotalCost:      h.TotalCost,
		AddedQuantity:  flow.Quantity,
		AddedPrincipal: flow.Principal,
	}
}
