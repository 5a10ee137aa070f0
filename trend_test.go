package folioplan

import (
	"iter"
	"testing"
)

func collect(seq iter.Seq[TrendPoint]) []TrendPoint {
	var points []TrendPoint
	for p := range seq {
		points = append(points, p)
	}
	return points
}

func TestTrendSeries_TotalScope(t *testing.T) {
	history := []*Snapshot{
		snapshot("2024-01", record("X", CategorySecurity, 100, 10, 1000)),
		snapshot("2024-02", record("X", CategorySecurity, 110, 10, 1000)),
		snapshot("2024-03", record("X", CategorySecurity, 105, 12, 1210)),
	}
	points := collect(TrendSeries(history, ScopeTotal, Root(), nil, Range{}))

	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}
	if got, want := points[1].Value, EUR(1100); !got.Equal(want) {
		t.Errorf("February value = %v, want %v", got, want)
	}
	if got, want := points[2].Invested, EUR(1210); !got.Equal(want) {
		t.Errorf("March invested = %v, want %v", got, want)
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Month.Before(points[i].Month) {
			t.Errorf("points out of order: %v before %v", points[i-1].Month, points[i].Month)
		}
	}
}

func TestTrendSeries_Restartable(t *testing.T) {
	history := []*Snapshot{
		snapshot("2024-01", record("X", CategorySecurity, 100, 10, 1000)),
		snapshot("2024-02", record("X", CategorySecurity, 110, 10, 1000)),
	}
	seq := TrendSeries(history, ScopeTotal, Root(), nil, Range{})
	first := collect(seq)
	second := collect(seq)
	if len(first) != len(second) {
		t.Fatalf("second pass yields %d points, first %d", len(second), len(first))
	}
	for i := range first {
		if first[i].Month != second[i].Month || !first[i].Value.Equal(second[i].Value) {
			t.Errorf("point %d differs between passes: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestTrendSeries_RangeFilter(t *testing.T) {
	history := []*Snapshot{
		snapshot("2023-12"), snapshot("2024-01"), snapshot("2024-02"), snapshot("2024-03"),
	}
	points := collect(TrendSeries(history, ScopeTotal, Root(), nil,
		Range{From: month("2024-01"), To: month("2024-02")}))
	if len(points) != 2 || points[0].Month.String() != "2024-01" || points[1].Month.String() != "2024-02" {
		t.Errorf("points = %v", points)
	}
}

func TestTrendSeries_PolicyScopeResolvesPerPoint(t *testing.T) {
	// The policy switches from X to Y in March: each point filters against
	// the version in force for its own month.
	versions := []*PolicyVersion{
		singleLayerPolicy("v1", "2024-01-01", target("t1", "X", 100)),
		singleLayerPolicy("v2", "2024-03-01", target("t2", "Y", 100)),
	}
	history := []*Snapshot{
		snapshot("2024-02",
			record("X", CategorySecurity, 100, 10, 1000),
			record("Y", CategorySecurity, 10, 50, 450),
		),
		snapshot("2024-03",
			record("X", CategorySecurity, 100, 10, 1000),
			record("Y", CategorySecurity, 10, 50, 450),
		),
	}
	points := collect(TrendSeries(history, ScopePolicy, Root(), versions, Range{}))

	if got, want := points[0].Value, EUR(1000); !got.Equal(want) {
		t.Errorf("February point = %v, want X-only %v", got, want)
	}
	if got, want := points[1].Value, EUR(500); !got.Equal(want) {
		t.Errorf("March point = %v, want Y-only %v", got, want)
	}
}

func TestTrendSeries_LayerDrillFreezesMembership(t *testing.T) {
	// Y joined the growth layer only in the March version. A series drilled
	// into that layer projects the end-of-range membership backward: the
	// February point counts Y even though Y was not in the layer then.
	versions := []*PolicyVersion{
		singleLayerPolicy("v1", "2024-01-01", target("t1", "X", 100)),
		singleLayerPolicy("v2", "2024-03-01", target("t1", "X", 60), target("t2", "Y", 40)),
	}
	history := []*Snapshot{
		snapshot("2024-02",
			record("X", CategorySecurity, 100, 10, 1000),
			record("Y", CategorySecurity, 10, 50, 450),
		),
		snapshot("2024-03",
			record("X", CategorySecurity, 100, 10, 1000),
			record("Y", CategorySecurity, 10, 50, 450),
		),
	}
	points := collect(TrendSeries(history, ScopePolicy, InLayer("v2-core"), versions, Range{}))

	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	for i, p := range points {
		if got, want := p.Value, EUR(1500); !got.Equal(want) {
			t.Errorf("point %d value = %v, want frozen membership %v", i, got, want)
		}
	}
}

func TestTrendSeries_EmptyWindow(t *testing.T) {
	history := []*Snapshot{snapshot("2024-01")}
	points := collect(TrendSeries(history, ScopePolicy, InLayer("l"), nil,
		Range{From: month("2025-01")}))
	if len(points) != 0 {
		t.Errorf("points = %v, want none", points)
	}
}
