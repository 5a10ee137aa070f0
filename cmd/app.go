// Package cmd implements the CLI application to manage an allocation plan.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/renderer"
	"github.com/mfld/folioplan/store"
)

// Register the subcommands. A main package calls Register() and then
// Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&allocationCmd{}, "reports")
	c.Register(&trendCmd{}, "reports")
	c.Register(&breakdownCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")

	c.Register(&exportCmd{}, "data")
	c.Register(&importCmd{}, "data")

	c.Register(&serveCmd{}, "server")
	c.Register(&assistCmd{}, "assistant")
}

// as a CLI application it is short lived, so global flags are fine.

var dbPath = flag.String("db", "./folioplan.db", "Path to the SQLite database file")
var currency = flag.String("currency", "EUR", "Reporting currency code")

// openStore opens the application database.
func openStore() (*store.Store, error) {
	return store.Open(*dbPath)
}

// newRenderer returns a markdown renderer in the reporting currency.
func newRenderer() renderer.Renderer {
	return renderer.Renderer{Currency: *currency}
}

// loadReportData loads the two inputs every report needs.
func loadReportData(ctx context.Context, s *store.Store) ([]*folioplan.Snapshot, []*folioplan.PolicyVersion, error) {
	history, err := s.ListSnapshots(ctx)
	if err != nil {
		return nil, nil, err
	}
	versions, err := s.ListPolicyVersions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return history, versions, nil
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// fail prints an error and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}
