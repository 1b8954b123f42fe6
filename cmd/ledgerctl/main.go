// Command ledgerctl inspects and repairs the DayTrader ledger file.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands(os.Stdout) {
		commander.Register(c, "ledger")
	}

	flag.StringVar(&configPath, "config", defaultConfigPath(), "path to the bot's config.yaml")
	flag.StringVar(&ledgerFile, "ledger", "", "ledger file; overrides the config")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
