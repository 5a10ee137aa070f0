package folioplan

import "testing"

func TestResolve_PicksVersionInForce(t *testing.T) {
	v1 := singleLayerPolicy("v1", "2023-01-15")
	v2 := singleLayerPolicy("v2", "2024-03-01")
	v3 := singleLayerPolicy("v3", "2024-09-10")
	versions := []*PolicyVersion{v2, v3, v1} // deliberately unsorted

	tests := []struct {
		month string
		want  string
	}{
		{"2023-06", "v1"},
		{"2024-02", "v1"},
		{"2024-03", "v2"}, // version starting 2024-03-01 is in force for 2024-03
		{"2024-09", "v3"}, // starting mid-month still covers that month
		{"2030-01", "v3"},
		{"2020-01", "v1"}, // before any version: fall back to the earliest
	}
	for _, tt := range tests {
		got := Resolve(versions, month(tt.month))
		if got == nil || got.ID != tt.want {
			t.Errorf("Resolve(%s) = %v, want %s", tt.month, got, tt.want)
		}
	}
}

func TestResolve_IgnoresStatus(t *testing.T) {
	v1 := singleLayerPolicy("v1", "2023-01-01")
	v1.Status = StatusArchived
	v2 := singleLayerPolicy("v2", "2024-01-01")

	got := Resolve([]*PolicyVersion{v1, v2}, month("2023-06"))
	if got.ID != "v1" {
		t.Errorf("Resolve() = %s, want archived v1 to stay valid for its months", got.ID)
	}
}

func TestResolve_Monotonic(t *testing.T) {
	versions := []*PolicyVersion{
		singleLayerPolicy("v1", "2023-01-01"),
		singleLayerPolicy("v2", "2023-08-01"),
		singleLayerPolicy("v3", "2024-04-01"),
	}
	months := []string{"2022-01", "2023-02", "2023-08", "2024-01", "2024-04", "2025-12"}
	var last Date
	for _, m := range months {
		v := Resolve(versions, month(m))
		if v.StartDate.Before(last) {
			t.Fatalf("Resolve(%s) start date %v went backward from %v", m, v.StartDate, last)
		}
		last = v.StartDate
	}
}

func TestResolve_Empty(t *testing.T) {
	if got := Resolve(nil, month("2024-01")); got != nil {
		t.Errorf("Resolve(no versions) = %v, want nil", got)
	}
}

func TestAssetMap_LastOneWins(t *testing.T) {
	v := &PolicyVersion{
		ID: "v", StartDate: day("2024-01-01"),
		Layers: []Layer{
			{ID: "l1", Name: "First", GlobalWeight: 50, Targets: []Target{target("t1", "X", 100)}},
			{ID: "l2", Name: "Second", GlobalWeight: 50, Targets: []Target{target("t2", "X", 100)}},
		},
	}
	m := v.AssetMap()
	if len(m) != 1 {
		t.Fatalf("AssetMap() has %d entries, want 1", len(m))
	}
	ref := m["X"]
	if ref.LayerID != "l2" || ref.Target.ID != "t2" {
		t.Errorf("AssetMap() kept %s/%s, want the last encountered l2/t2", ref.LayerID, ref.Target.ID)
	}
}

func TestAssetMap_NilVersion(t *testing.T) {
	var v *PolicyVersion
	if got := v.AssetMap(); len(got) != 0 {
		t.Errorf("nil version AssetMap() = %v, want empty", got)
	}
}

func TestTargetWeight_AutoSingleSibling(t *testing.T) {
	// One sibling claims 70% explicitly, the auto target takes the rest.
	auto := target("t2", "Y", AutoWeight)
	layer := Layer{ID: "l", GlobalWeight: 100, Targets: []Target{
		target("t1", "X", 70),
		auto,
	}}
	if got, want := layer.TargetWeight(auto), Percent(30); !got.Equal(want) {
		t.Errorf("TargetWeight(auto) = %v, want %v", got, want)
	}
}

func TestTargetWeight_AutoSplitsEvenly(t *testing.T) {
	a1 := target("t2", "Y", AutoWeight)
	a2 := target("t3", "Z", AutoWeight)
	layer := Layer{ID: "l", GlobalWeight: 100, Targets: []Target{
		target("t1", "X", 40),
		a1, a2,
	}}
	if got, want := layer.TargetWeight(a1), Percent(30); !got.Equal(want) {
		t.Errorf("TargetWeight(a1) = %v, want %v", got, want)
	}
	if got, want := layer.TargetWeight(a2), Percent(30); !got.Equal(want) {
		t.Errorf("TargetWeight(a2) = %v, want %v", got, want)
	}
}

func TestTargetWeight_AutoFlooredAtZero(t *testing.T) {
	auto := target("t2", "Y", AutoWeight)
	layer := Layer{ID: "l", GlobalWeight: 100, Targets: []Target{
		target("t1", "X", 120), // explicit weights already exceed 100
		auto,
	}}
	if got := layer.TargetWeight(auto); got != 0 {
		t.Errorf("TargetWeight(auto) = %v, want 0", got)
	}
}

func TestTargetWeight_Explicit(t *testing.T) {
	explicit := target("t1", "X", 55)
	layer := Layer{ID: "l", Targets: []Target{explicit, target("t2", "Y", AutoWeight)}}
	if got, want := layer.TargetWeight(explicit), Percent(55); !got.Equal(want) {
		t.Errorf("TargetWeight(explicit) = %v, want %v", got, want)
	}
}

func TestClone_DeepCopy(t *testing.T) {
	orig := singleLayerPolicy("v1", "2024-01-01", target("t1", "X", 60), target("t2", "Y", 40))
	clone := orig.Clone("v2", "next", day("2024-06-01"))

	if clone.ID != "v2" || clone.Status != StatusActive || clone.StartDate != day("2024-06-01") {
		t.Fatalf("Clone() identity fields wrong: %+v", clone)
	}
	// Mutating the clone must not leak into the original.
	clone.Layers[0].Targets[0].IntraWeight = 10
	clone.Layers[0].Name = "changed"
	if orig.Layers[0].Targets[0].IntraWeight != 60 || orig.Layers[0].Name != "Core" {
		t.Error("Clone() shares layer storage with the original")
	}
}
