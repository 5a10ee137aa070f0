package folioplan

import (
	"slices"

	"github.com/mfld/folioplan/date"
)

// PolicyStatus is the lifecycle status of a policy version. Archiving only
// stops a version from accepting new edits; it never affects which version
// resolves for a historical month.
type PolicyStatus string

const (
	StatusActive   PolicyStatus = "active"
	StatusArchived PolicyStatus = "archived"
)

// AutoWeight is the sentinel target weight meaning "distribute the layer's
// unused weight equally among all auto targets in the layer".
const AutoWeight Percent = -1

// Target is a leaf allocation rule binding one asset to an intra-layer
// target weight.
type Target struct {
	ID      string `json:"id"`
	AssetID string `json:"assetId"`
	// Name is the display name cached at edit time, used when the referenced
	// asset no longer exists.
	Name string `json:"name"`
	// IntraWeight is a percent of the layer, not of the whole portfolio.
	// AutoWeight means the weight is resolved from the layer's unused weight.
	IntraWeight Percent `json:"intraWeight"`
	Color       string  `json:"color,omitempty"`
	Note        string  `json:"note,omitempty"`
}

// IsAuto reports whether the target's weight is the auto-distribute sentinel.
func (t Target) IsAuto() bool { return t.IntraWeight == AutoWeight }

// Layer is a named grouping within a policy version.
type Layer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// GlobalWeight is a percent of the whole portfolio. Layers of a version
	// are expected to sum to roughly 100, but this is not enforced here.
	GlobalWeight Percent  `json:"globalWeight"`
	Description  string   `json:"description,omitempty"`
	Targets      []Target `json:"targets"`
}

// TargetWeight returns the effective intra-layer weight of the given target,
// resolving the auto sentinel: the unused weight (100 minus the explicit
// weights) is split equally among the layer's auto targets, floored at 0
// when explicit weights already exceed 100.
func (l Layer) TargetWeight(t Target) Percent {
	if !t.IsAuto() {
		return t.IntraWeight
	}
	var explicit Percent
	autos := 0
	for _, x := range l.Targets {
		if x.IsAuto() {
			autos++
		} else {
			explicit += x.IntraWeight
		}
	}
	if autos == 0 {
		return 0
	}
	unused := 100 - explicit
	if unused < 0 {
		return 0
	}
	return unused / Percent(autos)
}

// AssetIDs returns the set of asset ids referenced by the layer's targets.
func (l Layer) AssetIDs() map[string]bool {
	ids := make(map[string]bool, len(l.Targets))
	for _, t := range l.Targets {
		ids[t.AssetID] = true
	}
	return ids
}

// PolicyVersion is a dated, hierarchical target allocation.
type PolicyVersion struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Rationale string       `json:"rationale,omitempty"` // free-text markdown document
	StartDate date.Date    `json:"startDate"`
	Status    PolicyStatus `json:"status"`
	Layers    []Layer      `json:"layers"`
}

// Clone returns a deep copy of the version with a new id, name and start
// date, in active status. Cloning before editing is how policy history is
// preserved: the caller archives the predecessor.
func (v *PolicyVersion) Clone(id, name string, start date.Date) *PolicyVersion {
	clone := &PolicyVersion{
		ID:        id,
		Name:      name,
		Rationale: v.Rationale,
		StartDate: start,
		Status:    StatusActive,
		Layers:    make([]Layer, len(v.Layers)),
	}
	for i, l := range v.Layers {
		layer := l
		layer.Targets = slices.Clone(l.Targets)
		clone.Layers[i] = layer
	}
	return clone
}

// Layer returns the layer with the given id, or false if absent.
func (v *PolicyVersion) Layer(id string) (Layer, bool) {
	for _, l := range v.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// TargetRef locates a target inside a resolved policy version.
type TargetRef struct {
	Target  Target
	LayerID string
}

// AssetMap flattens all layers' targets into a single asset-id lookup. It is
// how every calculator answers "is this asset in scope" and "which layer does
// it belong to". When two targets reference the same asset the last one
// encountered wins; the store rejects such policies at save time, but data
// predating that check is still resolved without error.
func (v *PolicyVersion) AssetMap() map[string]TargetRef {
	m := make(map[string]TargetRef)
	if v == nil {
		return m
	}
	for _, l := range v.Layers {
		for _, t := range l.Targets {
			m[t.AssetID] = TargetRef{Target: t, LayerID: l.ID}
		}
	}
	return m
}

// Resolve returns the policy version in force for the given month: the
// version with the latest start date on or before the month's last day.
// When no version has started yet, the earliest version is returned, so the
// result is nil only when versions is empty. Status is ignored: archived
// versions remain valid for the months they covered.
func Resolve(versions []*PolicyVersion, m date.Month) *PolicyVersion {
	if len(versions) == 0 {
		return nil
	}
	sorted := slices.Clone(versions)
	slices.SortFunc(sorted, func(a, b *PolicyVersion) int {
		// descending start date
		switch {
		case a.StartDate.After(b.StartDate):
			return -1
		case a.StartDate.Before(b.StartDate):
			return 1
		default:
			return 0
		}
	})
	limit := m.LastDay()
	for _, v := range sorted {
		if !v.StartDate.After(limit) {
			return v
		}
	}
	// all versions start after the month: fall back to the earliest.
	return sorted[len(sorted)-1]
}
