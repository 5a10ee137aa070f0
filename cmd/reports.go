package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
	"github.com/mfld/folioplan/renderer"
)

// reportFlags are the flags shared by the report subcommands.
type reportFlags struct {
	scope string
	layer string
	from  string
	to    string
}

func (r *reportFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.scope, "scope", "total", "Report scope: 'total' or 'policy'")
	f.StringVar(&r.layer, "layer", "", "Drill into the layer with this id (policy scope)")
	f.StringVar(&r.from, "from", "", "First month of the window (YYYY-MM), open when empty")
	f.StringVar(&r.to, "to", "", "Last month of the window (YYYY-MM), open when empty")
}

func (r *reportFlags) parse() (folioplan.Scope, folioplan.DrillScope, date.Range, error) {
	scope, err := folioplan.ParseScope(r.scope)
	if err != nil {
		return 0, folioplan.DrillScope{}, date.Range{}, err
	}
	drill := folioplan.Root()
	if r.layer != "" {
		drill = folioplan.InLayer(r.layer)
	}
	var rng date.Range
	if r.from != "" {
		if rng.From, err = date.ParseMonth(r.from); err != nil {
			return 0, folioplan.DrillScope{}, date.Range{}, err
		}
	}
	if r.to != "" {
		if rng.To, err = date.ParseMonth(r.to); err != nil {
			return 0, folioplan.DrillScope{}, date.Range{}, err
		}
	}
	return scope, drill, rng, nil
}

// allocationCmd displays the actual-vs-target allocation of one month.
type allocationCmd struct {
	reportFlags
	month string
}

func (*allocationCmd) Name() string     { return "allocation" }
func (*allocationCmd) Synopsis() string { return "display actual vs target allocation" }
func (*allocationCmd) Usage() string {
	return `fp allocation [-m <month>] [-scope total|policy] [-layer <id>]

  Displays the allocation of a month's snapshot against the policy in force,
  grouped by bucket (total scope), by layer (policy scope) or by target
  (drilled into one layer).
`
}

func (c *allocationCmd) SetFlags(f *flag.FlagSet) {
	c.reportFlags.set(f)
	f.StringVar(&c.month, "m", "", "Month of the snapshot (YYYY-MM), latest when empty")
}

func (c *allocationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	scope, drill, _, err := c.parse()
	if err != nil {
		return fail(err)
	}
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	history, versions, err := loadReportData(ctx, s)
	if err != nil {
		return fail(err)
	}
	var snap *folioplan.Snapshot
	if c.month == "" {
		if len(history) == 0 {
			fmt.Println("no snapshots yet")
			return subcommands.ExitSuccess
		}
		snap = history[len(history)-1]
	} else {
		m, err := date.ParseMonth(c.month)
		if err != nil {
			return fail(err)
		}
		for _, h := range history {
			if h.Month == m {
				snap = h
			}
		}
		if snap == nil {
			return fail(fmt.Errorf("no snapshot for %s", m))
		}
	}
	policy := folioplan.Resolve(versions, snap.Month)
	report := folioplan.NewAllocation(snap, scope, policy, drill)
	printMarkdown(newRenderer().Allocation(report))
	return subcommands.ExitSuccess
}

// trendCmd displays the historical value/invested series.
type trendCmd struct {
	reportFlags
}

func (*trendCmd) Name() string     { return "trend" }
func (*trendCmd) Synopsis() string { return "display the historical value and invested series" }
func (*trendCmd) Usage() string {
	return `fp trend [-scope total|policy] [-layer <id>] [-from <month>] [-to <month>]

  Displays one point per snapshot inside the window.
`
}

func (c *trendCmd) SetFlags(f *flag.FlagSet) { c.reportFlags.set(f) }

func (c *trendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	scope, drill, rng, err := c.parse()
	if err != nil {
		return fail(err)
	}
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	history, versions, err := loadReportData(ctx, s)
	if err != nil {
		return fail(err)
	}
	var points []folioplan.TrendPoint
	for p := range folioplan.TrendSeries(history, scope, drill, versions, rng) {
		points = append(points, p)
	}
	printMarkdown(newRenderer().Trend(points))
	return subcommands.ExitSuccess
}

// breakdownCmd displays the per-entity profit and flow attribution.
type breakdownCmd struct {
	reportFlags
}

func (*breakdownCmd) Name() string     { return "breakdown" }
func (*breakdownCmd) Synopsis() string { return "attribute a window's change to buckets, layers or targets" }
func (*breakdownCmd) Usage() string {
	return `fp breakdown [-scope total|policy] [-layer <id>] [-from <month>] [-to <month>]

  Displays end value, net flow and profit per entity over the window, with a
  total row that reconciles with the displayed rows.
`
}

func (c *breakdownCmd) SetFlags(f *flag.FlagSet) { c.reportFlags.set(f) }

func (c *breakdownCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	scope, drill, rng, err := c.parse()
	if err != nil {
		return fail(err)
	}
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	history, versions, err := loadReportData(ctx, s)
	if err != nil {
		return fail(err)
	}
	window := folioplan.Window(history, rng)
	if len(window) == 0 {
		fmt.Println("no snapshots in the window")
		return subcommands.ExitSuccess
	}
	end := window[len(window)-1]
	baseline := folioplan.Baseline(history, window)
	policy := folioplan.Resolve(versions, end.Month)
	report := folioplan.NewBreakdown(baseline, end, policy, scope, drill)
	printMarkdown(newRenderer().Breakdown(report))
	return subcommands.ExitSuccess
}

// summaryCmd displays the headline metrics of a window.
type summaryCmd struct {
	reportFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display value, invested, profit and return over a window" }
func (*summaryCmd) Usage() string {
	return `fp summary [-scope total|policy] [-from <month>] [-to <month>]

  Displays the end-of-window metrics and the window's profit and return rate.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) { c.reportFlags.set(f) }

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	scope, _, rng, err := c.parse()
	if err != nil {
		return fail(err)
	}
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	history, versions, err := loadReportData(ctx, s)
	if err != nil {
		return fail(err)
	}
	window := folioplan.Window(history, rng)
	if len(window) == 0 {
		fmt.Println("no snapshots in the window")
		return subcommands.ExitSuccess
	}
	end := window[len(window)-1]
	endMetrics := folioplan.SnapshotMetrics(end, scope, versions)
	var start *folioplan.Metrics
	if baseline := folioplan.Baseline(history, window); baseline != nil {
		m := folioplan.SnapshotMetrics(baseline, scope, versions)
		start = &m
	}
	profit := folioplan.PeriodProfit(start, endMetrics)

	printMarkdown(newRenderer().Summary(renderer.Summary{
		Month:    end.Month,
		Value:    endMetrics.Value,
		Invested: endMetrics.Invested,
		Profit:   profit,
		Return:   folioplan.ReturnRate(profit, endMetrics.Invested),
	}))
	return subcommands.ExitSuccess
}
