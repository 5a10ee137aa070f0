package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/mfld/folioplan/config"
	"github.com/mfld/folioplan/logger"
	"github.com/mfld/folioplan/server"
	"github.com/mfld/folioplan/store"
)

// serveCmd runs the REST API server.
type serveCmd struct {
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the REST API server" }
func (*serveCmd) Usage() string {
	return `fp serve [-port <port>]

  Serves the JSON API. Configuration comes from the environment (optionally
  a .env file); the -db, -currency and -port flags override it.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Port to listen on, overrides PORT")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	// flags beat environment
	if c.port != "" {
		cfg.Port = c.port
	}
	if isFlagSet("db") {
		cfg.DatabasePath = *dbPath
	}
	if isFlagSet("currency") {
		cfg.Currency = *currency
	}

	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if err := server.New(s, cfg).ListenAndServe(cfg.Port); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
