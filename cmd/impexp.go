package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
)

// exportCmd writes the snapshot history to CSV or JSONL.
type exportCmd struct {
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the snapshot history" }
func (*exportCmd) Usage() string {
	return `fp export [-format csv|jsonl] [-o <file>]

  Writes the full snapshot history to stdout or a file. CSV flattens records,
  JSONL keeps one snapshot per line and can be re-imported.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "jsonl", "Export format: 'csv' or 'jsonl'")
	f.StringVar(&c.output, "o", "", "Output file, stdout when empty")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	history, err := s.ListSnapshots(ctx)
	if err != nil {
		return fail(err)
	}

	out := os.Stdout
	if c.output != "" {
		out, err = os.Create(c.output)
		if err != nil {
			return fail(err)
		}
		defer out.Close()
	}

	switch c.format {
	case "csv":
		err = folioplan.ExportSnapshotsCSV(out, history)
	case "jsonl":
		err = folioplan.ExportSnapshotsJSONL(out, history)
	default:
		return fail(fmt.Errorf("unknown export format: %q", c.format))
	}
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// importCmd reads snapshots from JSONL, or holding records from an arbitrary
// broker JSON export through a jsonpath mapping.
type importCmd struct {
	file     string
	mapping  string
	month    string
	category string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import snapshots or broker positions" }
func (*importCmd) Usage() string {
	return `fp import -file <file> [-mapping <mapping.json> -m <month> -category <category>]

  Without a mapping, reads snapshots in the JSONL export format and saves
  them. With a mapping, reads an arbitrary broker JSON export, extracts
  records through the mapping's jsonpath expressions, replays them against
  the history and saves them as the month's snapshot.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Input file")
	f.StringVar(&c.mapping, "mapping", "", "Mapping file of jsonpath expressions (broker import)")
	f.StringVar(&c.month, "m", date.ThisMonth().String(), "Target month of the broker import (YYYY-MM)")
	f.StringVar(&c.category, "category", string(folioplan.CategorySecurity), "Asset category of the imported records")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		return fail(fmt.Errorf("missing -file"))
	}
	in, err := os.Open(c.file)
	if err != nil {
		return fail(err)
	}
	defer in.Close()

	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if c.mapping == "" {
		snapshots, err := folioplan.ImportSnapshotsJSONL(in)
		if err != nil {
			return fail(err)
		}
		for _, snap := range snapshots {
			if err := s.SaveSnapshot(ctx, snap); err != nil {
				return fail(err)
			}
		}
		fmt.Printf("Imported %d snapshots\n", len(snapshots))
		return subcommands.ExitSuccess
	}

	mappingData, err := os.ReadFile(c.mapping)
	if err != nil {
		return fail(err)
	}
	var mapping folioplan.RecordMapping
	if err := json.Unmarshal(mappingData, &mapping); err != nil {
		return fail(fmt.Errorf("invalid mapping file: %w", err))
	}
	category, err := folioplan.ParseAssetCategory(c.category)
	if err != nil {
		return fail(err)
	}
	m, err := date.ParseMonth(c.month)
	if err != nil {
		return fail(err)
	}

	imported, err := folioplan.ImportRecords(in, mapping, category, *currency)
	if err != nil {
		return fail(err)
	}
	history, err := s.ListSnapshots(ctx)
	if err != nil {
		return fail(err)
	}

	// re-express each imported position as the flow that leads to it from
	// the previous snapshot, so the ledger invariants hold. Broker exports
	// carry no cost basis: the value change stands in for the principal.
	snap := &folioplan.Snapshot{ID: uuid.New().String(), Month: m}
	for _, r := range imported {
		prev := folioplan.PreviousHolding(history, m, r.AssetID)
		flow := folioplan.Flow{
			Quantity:  r.Quantity.Sub(prev.Quantity),
			Principal: r.MarketValue.Sub(prev.MarketValue),
		}
		asset := folioplan.Asset{ID: r.AssetID, Name: r.Name, Category: r.Category}
		snap.Records = append(snap.Records, folioplan.ReplayRecord(history, m, asset, r.UnitPrice, flow))
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		return fail(err)
	}
	fmt.Printf("Imported %d records into %s\n", len(snap.Records), m)
	return subcommands.ExitSuccess
}
