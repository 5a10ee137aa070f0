package folioplan

// BreakdownRow attributes a period's change to one entity: a bucket, a layer
// or a target depending on scope and drill.
type BreakdownRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	EndVal  Amount `json:"endVal"`
	EndCost Amount `json:"endCost"`
	// NetFlow is the net capital moved into the entity during the window
	// (end cost minus start cost).
	NetFlow Amount `json:"netFlow"`
	// Profit is the flow-neutral gain attributable to the entity during the
	// window: the change in (value − cost).
	Profit Amount `json:"profit"`
}

// BreakdownReport is the per-entity profit/flow attribution over a window.
// Total is the column-wise sum of Rows, never recomputed independently, so
// it always reconciles exactly with the displayed rows.
type BreakdownReport struct {
	Scope Scope          `json:"scope"`
	Layer string         `json:"layer,omitempty"`
	Rows  []BreakdownRow `json:"rows"`
	Total BreakdownRow   `json:"total"`
}

// entityTotals accumulates value and cost per entity id over one snapshot.
type entityTotals struct {
	val  map[string]Amount
	cost map[string]Amount
}

func newEntityTotals() entityTotals {
	return entityTotals{val: make(map[string]Amount), cost: make(map[string]Amount)}
}

func (e entityTotals) add(id string, r HoldingRecord) {
	e.val[id] = e.val[id].Add(r.MarketValue)
	e.cost[id] = e.cost[id].Add(r.TotalCost)
}

// NewBreakdown attributes the window between two snapshots to entities. The
// start snapshot may be nil (no baseline: start values are zero). Entities
// are the four fixed buckets at total scope, the policy's layers at policy
// scope, and the focused layer's targets when drilled.
//
// At total scope, rows whose end value, net flow and profit are all zero are
// dropped; policy-scope tables keep every configured entity so gaps in
// holdings stay visible.
func NewBreakdown(start, end *Snapshot, policy *PolicyVersion, scope Scope, drill DrillScope) *BreakdownReport {
	report := &BreakdownReport{Scope: scope, Total: BreakdownRow{ID: "total", Name: "Total"}}

	type entity struct {
		id, name string
	}
	var entities []entity
	var classify func(r HoldingRecord) (string, bool)

	switch {
	case scope == ScopeTotal:
		for _, b := range Buckets() {
			entities = append(entities, entity{id: string(b), name: b.Name()})
		}
		classify = func(r HoldingRecord) (string, bool) {
			return string(r.Category.Bucket()), true
		}
	case policy == nil:
		return report
	default:
		assets := policy.AssetMap()
		if layerID, ok := drill.Layer(); ok {
			layer, found := policy.Layer(layerID)
			if !found {
				return report
			}
			report.Layer = layer.Name
			for _, t := range layer.Targets {
				entities = append(entities, entity{id: t.ID, name: t.Name})
			}
			classify = func(r HoldingRecord) (string, bool) {
				ref, ok := assets[r.AssetID]
				if !ok || ref.LayerID != layerID {
					return "", false
				}
				return ref.Target.ID, true
			}
		} else {
			for _, l := range policy.Layers {
				entities = append(entities, entity{id: l.ID, name: l.Name})
			}
			classify = func(r HoldingRecord) (string, bool) {
				ref, ok := assets[r.AssetID]
				if !ok {
					return "", false
				}
				return ref.LayerID, true
			}
		}
	}

	endTotals := newEntityTotals()
	for _, r := range end.Records {
		if id, ok := classify(r); ok {
			endTotals.add(id, r)
		}
	}
	startTotals := newEntityTotals()
	if start != nil {
		for _, r := range start.Records {
			if id, ok := classify(r); ok {
				startTotals.add(id, r)
			}
		}
	}

	for _, e := range entities {
		endVal, endCost := endTotals.val[e.id], endTotals.cost[e.id]
		startVal, startCost := startTotals.val[e.id], startTotals.cost[e.id]
		row := BreakdownRow{
			ID:      e.id,
			Name:    e.name,
			EndVal:  endVal,
			EndCost: endCost,
			NetFlow: endCost.Sub(startCost),
			Profit:  endVal.Sub(endCost).Sub(startVal.Sub(startCost)),
		}
		if scope == ScopeTotal && row.EndVal.IsZero() && row.NetFlow.IsZero() && row.Profit.IsZero() {
			continue
		}
		report.Rows = append(report.Rows, row)
		report.Total.EndVal = report.Total.EndVal.Add(row.EndVal)
		report.Total.EndCost = report.Total.EndCost.Add(row.EndCost)
		report.Total.NetFlow = report.Total.NetFlow.Add(row.NetFlow)
		report.Total.Profit = report.Total.Profit.Add(row.Profit)
	}
	return report
}
