package renderer

import (
	"strings"
	"testing"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
)

var r = Renderer{Currency: "EUR"}

func TestAllocation(t *testing.T) {
	report := &folioplan.AllocationReport{
		Month: date.MustParseMonth("2024-03"),
		Scope: folioplan.ScopePolicy,
		Total: folioplan.A(900, ""),
		Groups: []folioplan.AllocationGroup{
			{ID: "growth", Name: "Growth", IsLayer: true, Value: folioplan.A(600, ""), Actual: 66.67, Target: 60, Deviation: 6.67},
			{ID: "safety", Name: "Safety", IsLayer: true, Value: folioplan.A(300, ""), Actual: 33.33, Target: 40, Deviation: -6.67},
		},
	}
	md := r.Allocation(report)

	for _, want := range []string{
		"# Allocation — 2024-03",
		"Scope: policy",
		"| Growth ▸ |",
		"66.67%",
		"+6.67%",
		"-6.67%",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("allocation markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBreakdown_TotalRowRendered(t *testing.T) {
	report := &folioplan.BreakdownReport{
		Scope: folioplan.ScopeTotal,
		Rows: []folioplan.BreakdownRow{
			{ID: "equity", Name: "Equity", EndVal: folioplan.A(1320, ""), NetFlow: folioplan.A(220, ""), Profit: folioplan.A(100, "")},
		},
		Total: folioplan.BreakdownRow{ID: "total", Name: "Total", EndVal: folioplan.A(1320, ""), NetFlow: folioplan.A(220, ""), Profit: folioplan.A(100, "")},
	}
	md := r.Breakdown(report)
	if !strings.Contains(md, "| Equity |") {
		t.Errorf("breakdown markdown missing row:\n%s", md)
	}
	if !strings.Contains(md, "**Total**") {
		t.Errorf("breakdown markdown missing total row:\n%s", md)
	}
}

func TestTrend(t *testing.T) {
	points := []folioplan.TrendPoint{
		{Month: date.MustParseMonth("2024-01"), Value: folioplan.A(1000, ""), Invested: folioplan.A(1000, "")},
		{Month: date.MustParseMonth("2024-02"), Value: folioplan.A(1100, ""), Invested: folioplan.A(1000, "")},
	}
	md := r.Trend(points)
	if got := strings.Count(md, "| 2024-"); got != 2 {
		t.Errorf("trend markdown has %d point rows, want 2:\n%s", got, md)
	}
}

func TestSummary(t *testing.T) {
	md := r.Summary(Summary{
		Month:    date.MustParseMonth("2024-03"),
		Value:    folioplan.A(1500, ""),
		Invested: folioplan.A(1200, ""),
		Profit:   folioplan.A(300, ""),
		Return:   25,
	})
	for _, want := range []string{"# Summary — 2024-03", "+25.00%"} {
		if !strings.Contains(md, want) {
			t.Errorf("summary markdown missing %q:\n%s", want, md)
		}
	}
}
