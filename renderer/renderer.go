// Package renderer turns report structs into markdown documents.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
)

//go:embed templates/*.md
var templates embed.FS

// Renderer renders reports in the configured reporting currency. Stored
// amounts are currency-less; the renderer attaches the code for display.
type Renderer struct {
	Currency string
}

// Summary is the headline block of a reporting window.
type Summary struct {
	Month    date.Month
	Value    folioplan.Amount
	Invested folioplan.Amount
	Profit   folioplan.Amount
	Return   folioplan.Percent
}

// Allocation renders the allocation report as a markdown table.
func (r Renderer) Allocation(report *folioplan.AllocationReport) string {
	return r.renderTemplate("allocation", "templates/allocation.md", report)
}

// Breakdown renders the attribution table with its reconciling total row.
func (r Renderer) Breakdown(report *folioplan.BreakdownReport) string {
	return r.renderTemplate("breakdown", "templates/breakdown.md", report)
}

// Trend renders the series as a month/value/invested table.
func (r Renderer) Trend(points []folioplan.TrendPoint) string {
	return r.renderTemplate("trend", "templates/trend.md", points)
}

// Summary renders the headline metrics block.
func (r Renderer) Summary(s Summary) string {
	return r.renderTemplate("summary", "templates/summary.md", s)
}

// renderTemplate parses and executes one embedded template with the
// renderer's formatting helpers.
func (r Renderer) renderTemplate(name, file string, data any) string {
	content, err := fs.ReadFile(templates, file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	funcs := template.FuncMap{
		"money":  r.money,
		"smoney": r.smoney,
		"pct":    func(p folioplan.Percent) string { return p.String() },
		"spct":   func(p folioplan.Percent) string { return p.SignedString() },
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}

func (r Renderer) money(a folioplan.Amount) string {
	return a.WithCurrency(r.Currency).String()
}

func (r Renderer) smoney(a folioplan.Amount) string {
	return a.WithCurrency(r.Currency).SignedString()
}
