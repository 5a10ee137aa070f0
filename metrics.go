package folioplan

import "fmt"

// Scope selects which holdings a calculation covers: the whole snapshot, or
// only the assets declared in the policy in force at the relevant month.
type Scope int

const (
	// ScopeTotal covers every record and uses the snapshot's cached aggregates.
	ScopeTotal Scope = iota
	// ScopePolicy covers only records whose asset appears in the policy
	// resolved for the snapshot's own month. A historical series must
	// re-resolve per point: assets enter and leave the declared allocation
	// as policies evolve.
	ScopePolicy
)

func (s Scope) String() string {
	switch s {
	case ScopeTotal:
		return "total"
	case ScopePolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// ParseScope parses a string into a Scope. The empty string is total scope.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "total":
		return ScopeTotal, nil
	case "policy":
		return ScopePolicy, nil
	default:
		return 0, fmt.Errorf("unknown scope: %q", s)
	}
}

// Metrics are the two aggregates every report derives from: market value and
// invested capital.
type Metrics struct {
	Value    Amount `json:"value"`
	Invested Amount `json:"invested"`
}

// Profit is the cumulative unrealized-plus-realized gain: value minus
// invested capital.
func (m Metrics) Profit() Amount { return m.Value.Sub(m.Invested) }

// SnapshotMetrics computes the value and invested capital of one snapshot at
// the given scope. Policy scope resolves the policy for the snapshot's own
// month against the full version list.
func SnapshotMetrics(s *Snapshot, scope Scope, versions []*PolicyVersion) Metrics {
	if scope == ScopeTotal {
		return Metrics{Value: s.TotalValue, Invested: s.TotalInvested}
	}
	assets := Resolve(versions, s.Month).AssetMap()
	var value, invested Amount
	for _, r := range s.Records {
		if _, ok := assets[r.AssetID]; !ok {
			continue
		}
		value = value.Add(r.MarketValue)
		invested = invested.Add(r.TotalCost)
	}
	return Metrics{Value: value, Invested: invested}
}

// PeriodProfit is the gain over a window: the change in cumulative profit
// between the baseline and end metrics. A nil start covers both the
// all-history case and a window with no preceding snapshot; profit is then
// measured from zero.
func PeriodProfit(start *Metrics, end Metrics) Amount {
	if start == nil {
		return end.Profit()
	}
	return end.Profit().Sub(start.Profit())
}

// ReturnRate is profit over invested capital, as a percent. It is 0, not an
// error, when nothing is invested.
func ReturnRate(profit, invested Amount) Percent {
	if invested.IsZero() {
		return 0
	}
	return Percent(100 * profit.AsFloat() / invested.AsFloat())
}

// Window returns the sub-slice of history falling inside the range,
// chronologically ascending. History must already be sorted.
func Window(history []*Snapshot, r Range) []*Snapshot {
	out := make([]*Snapshot, 0, len(history))
	for _, s := range history {
		if r.Contains(s.Month) {
			out = append(out, s)
		}
	}
	return out
}

// Baseline selects the profit baseline for a window: the snapshot
// immediately preceding the window's first element in the full chronological
// history, or nil when the window starts at the very beginning of history.
// Both slices must be sorted ascending.
func Baseline(history, window []*Snapshot) *Snapshot {
	if len(window) == 0 {
		return nil
	}
	first := window[0]
	var baseline *Snapshot
	for _, s := range history {
		if s.Month.Before(first.Month) {
			baseline = s
			continue
		}
		break
	}
	return baseline
}
