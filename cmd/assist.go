package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/assist"
)

// assistCmd drafts a policy rationale from the current reports.
type assistCmd struct {
	model string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "draft a policy rationale with the AI assistant" }
func (*assistCmd) Usage() string {
	return `fp assist [-model <name>]

  Sends the current allocation and breakdown reports to the model and prints
  the drafted policy rationale. Requires Gemini API credentials in the
  environment.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "Model name, default when empty")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	history, versions, err := loadReportData(ctx, s)
	if err != nil {
		return fail(err)
	}
	if len(history) == 0 {
		fmt.Println("no snapshots yet, nothing to draft from")
		return subcommands.ExitSuccess
	}
	end := history[len(history)-1]
	policy := folioplan.Resolve(versions, end.Month)

	r := newRenderer()
	allocation := r.Allocation(folioplan.NewAllocation(end, folioplan.ScopePolicy, policy, folioplan.Root()))
	breakdown := r.Breakdown(folioplan.NewBreakdown(folioplan.Baseline(history, history), end, policy, folioplan.ScopePolicy, folioplan.Root()))

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("cannot initialize Gemini client: %w", err))
	}
	advisor := assist.NewAdvisor()
	if c.model != "" {
		advisor.ModelName = c.model
	}
	if err := advisor.Start(ctx, client); err != nil {
		return fail(err)
	}
	draft, err := advisor.DraftRationale(ctx, allocation, breakdown)
	if err != nil {
		return fail(err)
	}
	printMarkdown(draft)
	return subcommands.ExitSuccess
}
