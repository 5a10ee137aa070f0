package folioplan

import "slices"

// DrillScope is the drill-down position of an allocation or attribution
// view: either the root, or inside one layer. Modelling it as a tagged
// union rather than a nullable id keeps the two algorithms exhaustive.
type DrillScope struct {
	layer string
}

// Root returns the top-level drill scope.
func Root() DrillScope { return DrillScope{} }

// InLayer returns the drill scope focused on one layer.
func InLayer(layerID string) DrillScope { return DrillScope{layer: layerID} }

// IsRoot reports whether the scope is the top level.
func (d DrillScope) IsRoot() bool { return d.layer == "" }

// Layer returns the focused layer id, or false at root.
func (d DrillScope) Layer() (string, bool) { return d.layer, d.layer != "" }

// AllocationGroup is one row of an allocation report: a bucket, a layer, or
// a target depending on scope and drill.
type AllocationGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// IsLayer marks rows that can be drilled into.
	IsLayer bool   `json:"isLayer"`
	Color   string `json:"color,omitempty"`
	Value   Amount `json:"value"`
	// Actual is this group's share of the grouping total.
	Actual Percent `json:"actual"`
	// Target is the declared weight (0 for total-scope buckets, which have
	// no declared target).
	Target Percent `json:"target"`
	// Deviation = Actual − Target.
	Deviation Percent `json:"deviation"`
}

// AllocationReport is the actual-vs-target allocation of one snapshot.
type AllocationReport struct {
	Month  Month             `json:"month"`
	Scope  Scope             `json:"scope"`
	Layer  string            `json:"layer,omitempty"` // focused layer name when drilled
	Total  Amount            `json:"total"`           // the grouping denominator
	Groups []AllocationGroup `json:"groups"`
}

// NewAllocation computes the allocation view of a snapshot.
//
// Total scope groups records into the four fixed buckets against the
// snapshot total. Policy scope at root reports one row per layer against the
// policy-mapped total; drilled into a layer it reports one row per target
// against the layer's actual total. All percent and deviation values are 0,
// never NaN, when the relevant denominator is 0.
func NewAllocation(s *Snapshot, scope Scope, policy *PolicyVersion, drill DrillScope) *AllocationReport {
	if scope == ScopeTotal {
		return bucketAllocation(s)
	}
	if layerID, ok := drill.Layer(); ok {
		return layerAllocation(s, policy, layerID)
	}
	return policyAllocation(s, policy)
}

// bucketAllocation groups all records by category bucket, against the grand
// total.
func bucketAllocation(s *Snapshot) *AllocationReport {
	values := make(map[Bucket]Amount, 4)
	for _, r := range s.Records {
		b := r.Category.Bucket()
		values[b] = values[b].Add(r.MarketValue)
	}
	report := &AllocationReport{Month: s.Month, Scope: ScopeTotal, Total: s.TotalValue}
	for _, b := range Buckets() {
		report.Groups = append(report.Groups, AllocationGroup{
			ID:     string(b),
			Name:   b.Name(),
			Value:  values[b],
			Actual: share(values[b], s.TotalValue),
		})
	}
	return report
}

// policyAllocation reports one row per layer. The denominator is the value
// of all policy-mapped records, not the snapshot total.
func policyAllocation(s *Snapshot, policy *PolicyVersion) *AllocationReport {
	report := &AllocationReport{Month: s.Month, Scope: ScopePolicy}
	if policy == nil {
		return report
	}
	assets := policy.AssetMap()

	var policyTotal Amount
	layerValues := make(map[string]Amount, len(policy.Layers))
	for _, r := range s.Records {
		ref, ok := assets[r.AssetID]
		if !ok {
			continue
		}
		policyTotal = policyTotal.Add(r.MarketValue)
		layerValues[ref.LayerID] = layerValues[ref.LayerID].Add(r.MarketValue)
	}
	report.Total = policyTotal

	for _, l := range policy.Layers {
		actual := share(layerValues[l.ID], policyTotal)
		report.Groups = append(report.Groups, AllocationGroup{
			ID:        l.ID,
			Name:      l.Name,
			IsLayer:   true,
			Value:     layerValues[l.ID],
			Actual:    actual,
			Target:    l.GlobalWeight,
			Deviation: deviation(actual, l.GlobalWeight, policyTotal),
		})
	}
	slices.SortStableFunc(report.Groups, func(a, b AllocationGroup) int {
		switch {
		case a.Target > b.Target:
			return -1
		case a.Target < b.Target:
			return 1
		default:
			return 0
		}
	})
	return report
}

// layerAllocation reports one row per target of the focused layer. The
// denominator is the sum of the layer's own actual values.
func layerAllocation(s *Snapshot, policy *PolicyVersion, layerID string) *AllocationReport {
	report := &AllocationReport{Month: s.Month, Scope: ScopePolicy}
	if policy == nil {
		return report
	}
	layer, ok := policy.Layer(layerID)
	if !ok {
		return report
	}
	report.Layer = layer.Name

	var layerTotal Amount
	values := make(map[string]Amount, len(layer.Targets))
	for _, t := range layer.Targets {
		if r, held := s.Record(t.AssetID); held {
			values[t.ID] = r.MarketValue
			layerTotal = layerTotal.Add(r.MarketValue)
		}
	}
	report.Total = layerTotal

	for _, t := range layer.Targets {
		actual := share(values[t.ID], layerTotal)
		target := layer.TargetWeight(t)
		name := t.Name
		if r, held := s.Record(t.AssetID); held && r.Name != "" {
			name = r.Name
		}
		report.Groups = append(report.Groups, AllocationGroup{
			ID:        t.ID,
			Name:      name,
			Color:     t.Color,
			Value:     values[t.ID],
			Actual:    actual,
			Target:    target,
			Deviation: deviation(actual, target, layerTotal),
		})
	}
	slices.SortStableFunc(report.Groups, func(a, b AllocationGroup) int {
		switch {
		case a.Value.GreaterThan(b.Value):
			return -1
		case a.Value.LessThan(b.Value):
			return 1
		default:
			return 0
		}
	})
	return report
}

// share is value over total as a percent, 0 when the total is 0.
func share(value, total Amount) Percent {
	if total.IsZero() {
		return 0
	}
	return Percent(100 * value.AsFloat() / total.AsFloat())
}

// deviation is actual minus target, forced to 0 when the denominator was 0
// so empty groupings render as neutral rather than as -target.
func deviation(actual, target Percent, total Amount) Percent {
	if total.IsZero() {
		return 0
	}
	return actual - target
}
