package folioplan

import (
	"encoding/json"
	"slices"

	"github.com/mfld/folioplan/date"
)

// HoldingRecord is one asset's ledger line within a Snapshot: cumulative
// state as of the snapshot's month plus the period's signed flow.
//
// Invariants: Quantity = previous quantity + AddedQuantity, and
// TotalCost = previous cost + AddedPrincipal, where "previous" is the same
// asset in the chronologically preceding snapshot (zero if none). The
// previous values are never stored, always derived.
type HoldingRecord struct {
	AssetID string `json:"assetId"`
	// Name and Category are cached from the asset at edit time and are used
	// as-is when the referenced asset has been deleted.
	Name     string        `json:"name"`
	Category AssetCategory `json:"category"`

	UnitPrice   Amount   `json:"unitPrice"` // pinned to 1 for cash-like categories
	Quantity    Quantity `json:"quantity"`
	MarketValue Amount   `json:"marketValue"` // = Quantity × UnitPrice
	TotalCost   Amount   `json:"totalCost"`   // cumulative invested principal

	// The period's flow components, both signed.
	AddedQuantity  Quantity `json:"addedQuantity"`
	AddedPrincipal Amount   `json:"addedPrincipal"`
}

// Snapshot is an immutable-once-saved statement of all holdings as of one
// calendar month.
type Snapshot struct {
	ID      string          `json:"id"`
	Month   date.Month      `json:"month"`
	Note    string          `json:"note,omitempty"`
	Records []HoldingRecord `json:"records"`

	// Cached aggregates, always recomputed from the records, never edited
	// independently.
	TotalValue    Amount `json:"totalValue"`
	TotalInvested Amount `json:"totalInvested"`
}

// Record returns the record for the given asset id, or false if the asset is
// not held in this snapshot.
func (s *Snapshot) Record(assetID string) (HoldingRecord, bool) {
	for _, r := range s.Records {
		if r.AssetID == assetID {
			return r, true
		}
	}
	return HoldingRecord{}, false
}

// RecomputeTotals refreshes the cached aggregates from the records. It must
// be called after any record edit.
func (s *Snapshot) RecomputeTotals() {
	var value, invested Amount
	for _, r := range s.Records {
		value = value.Add(r.MarketValue)
		invested = invested.Add(r.TotalCost)
	}
	s.TotalValue = value
	s.TotalInvested = invested
}

// SortSnapshots orders snapshots chronologically, oldest first.
func SortSnapshots(snapshots []*Snapshot) {
	slices.SortFunc(snapshots, func(a, b *Snapshot) int {
		return a.Month.Compare(b.Month)
	})
}

// PreviousHolding derives the holding state of an asset before the given
// month: the record of the latest snapshot strictly preceding the month. A
// zero Holding is returned when the asset has no earlier record.
func PreviousHolding(history []*Snapshot, m date.Month, assetID string) Holding {
	var prev *Snapshot
	for _, s := range history {
		if !s.Month.Before(m) {
			continue
		}
		if prev == nil || s.Month.After(prev.Month) {
			prev = s
		}
	}
	if prev == nil {
		return Holding{}
	}
	r, ok := prev.Record(assetID)
	if !ok {
		return Holding{}
	}
	return Holding{Quantity: r.Quantity, TotalCost: r.TotalCost, MarketValue: r.MarketValue}
}

// MarshalJSON writes the snapshot with a stable field order, so exports are
// diffable.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", s.ID)
	w.Append("month", s.Month)
	w.Optional("note", s.Note)
	w.Append("records", s.Records)
	w.Append("totalValue", s.TotalValue)
	w.Append("totalInvested", s.TotalInvested)
	return w.MarshalJSON()
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type alias Snapshot // shed the custom marshaller
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Snapshot(a)
	return nil
}
