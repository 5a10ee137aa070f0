package folioplan

import "iter"

// TrendPoint is one point of a historical series.
type TrendPoint struct {
	Month    Month  `json:"month"`
	Value    Amount `json:"value"`
	Invested Amount `json:"invested"`
}

// TrendSeries produces the (month, value, invested) series of the snapshots
// inside the range, chronologically ascending, one point per snapshot. The
// returned sequence is finite and restartable: ranging over it twice yields
// identical points.
//
// Total scope reads each snapshot's cached aggregates. Policy scope with a
// root drill re-resolves the policy for every point's own month. Policy
// scope drilled into a layer instead freezes the layer's asset membership at
// the policy resolved for the end of the range: walking backward through
// history, a point contributes zero for an asset that only joined the layer
// later. That back-projection of current structure is intentional and must
// not be "fixed" by re-resolving per point.
func TrendSeries(history []*Snapshot, scope Scope, drill DrillScope, versions []*PolicyVersion, r Range) iter.Seq[TrendPoint] {
	window := Window(history, r)

	// Freeze layer membership once, against the last snapshot of the window.
	var layerAssets map[string]bool
	layerID, drilled := drill.Layer()
	if scope == ScopePolicy && drilled && len(window) > 0 {
		end := Resolve(versions, window[len(window)-1].Month)
		if end != nil {
			if layer, ok := end.Layer(layerID); ok {
				layerAssets = layer.AssetIDs()
			}
		}
	}

	return func(yield func(TrendPoint) bool) {
		for _, s := range window {
			var point TrendPoint
			switch {
			case scope == ScopeTotal:
				point = TrendPoint{Month: s.Month, Value: s.TotalValue, Invested: s.TotalInvested}
			case drilled:
				point = layerPoint(s, layerAssets)
			default:
				m := SnapshotMetrics(s, ScopePolicy, versions)
				point = TrendPoint{Month: s.Month, Value: m.Value, Invested: m.Invested}
			}
			if !yield(point) {
				return
			}
		}
	}
}

// layerPoint sums the records belonging to the frozen layer membership.
func layerPoint(s *Snapshot, layerAssets map[string]bool) TrendPoint {
	point := TrendPoint{Month: s.Month}
	for _, r := range s.Records {
		if !layerAssets[r.AssetID] {
			continue
		}
		point.Value = point.Value.Add(r.MarketValue)
		point.Invested = point.Invested.Add(r.TotalCost)
	}
	return point
}
