package folioplan

import "github.com/mfld/folioplan/date"

// EUR is a helper for tests to create euro amounts from const.
func EUR(v float64) Amount { return A(v, "EUR") }

// month is a helper for tests to parse a "YYYY-MM" month.
func month(s string) Month { return date.MustParseMonth(s) }

// day is a helper for tests to parse a "YYYY-MM-DD" date.
func day(s string) Date { return date.MustParse(s) }

// record builds a holding record with value and cost already consistent.
func record(assetID string, category AssetCategory, price, qty, cost float64) HoldingRecord {
	p := EUR(price)
	q := Q(qty)
	return HoldingRecord{
		AssetID:     assetID,
		Name:        assetID,
		Category:    category,
		UnitPrice:   p,
		Quantity:    q,
		MarketValue: p.Mul(q),
		TotalCost:   EUR(cost),
	}
}

// snapshot builds a snapshot for a month with recomputed totals.
func snapshot(m string, records ...HoldingRecord) *Snapshot {
	s := &Snapshot{ID: "snap-" + m, Month: month(m), Records: records}
	s.RecomputeTotals()
	return s
}

// singleLayerPolicy builds a one-layer policy (weight 100) over the given
// targets, starting on the given day.
func singleLayerPolicy(id, start string, targets ...Target) *PolicyVersion {
	return &PolicyVersion{
		ID:        id,
		Name:      "policy " + id,
		StartDate: day(start),
		Status:    StatusActive,
		Layers: []Layer{
			{ID: id + "-core", Name: "Core", GlobalWeight: 100, Targets: targets},
		},
	}
}

// target builds a target rule for an asset.
func target(id, assetID string, weight Percent) Target {
	return Target{ID: id, AssetID: assetID, Name: assetID, IntraWeight: weight}
}
