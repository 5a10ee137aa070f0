// Command fp is the folioplan CLI.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/mfld/folioplan/cmd"
)

func main() {
	// shell completion: exits by itself when invoked by the completion hook
	completion().Complete("fp")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	reportFlags := map[string]complete.Predictor{
		"scope": predict.Set{"total", "policy"},
		"layer": predict.Something,
		"from":  predict.Something,
		"to":    predict.Something,
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"db":       predict.Files("*.db"),
			"currency": predict.Set{"EUR", "USD", "GBP", "CHF"},
		},
		Sub: map[string]*complete.Command{
			"allocation": {Flags: reportFlags},
			"trend":      {Flags: reportFlags},
			"breakdown":  {Flags: reportFlags},
			"summary":    {Flags: reportFlags},
			"export": {Flags: map[string]complete.Predictor{
				"format": predict.Set{"csv", "jsonl"},
				"o":      predict.Files("*"),
			}},
			"import": {Flags: map[string]complete.Predictor{
				"file":     predict.Files("*"),
				"mapping":  predict.Files("*.json"),
				"category": predict.Set{"security", "fund", "wealth", "metal", "fixed-income", "crypto", "other"},
			}},
			"serve":  {Flags: map[string]complete.Predictor{"port": predict.Something}},
			"assist": {Flags: map[string]complete.Predictor{"model": predict.Something}},
		},
	}
}
