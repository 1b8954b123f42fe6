package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"DayTrader/internal/config"
	"DayTrader/internal/ledger"
	"DayTrader/internal/logger"
	"DayTrader/internal/notifier"
)

var (
	configPath string
	ledgerFile string
)

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func commands(out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&listCmd{out: out},
		&showCmd{out: out},
		&resetCmd{out: out},
	}
}

// openStore opens the ledger named by -ledger or the config file.
func openStore() (*ledger.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if ledgerFile != "" {
		cfg.Ledger.File = ledgerFile
	}
	log, err := logger.New(config.LogConfig{Level: "warn", Format: "console"})
	if err != nil {
		log = zap.NewNop()
	}
	return ledger.NewStore(cfg.Ledger.File, cfg.Ledger.StartingBalance, log)
}

type listCmd struct {
	out io.Writer
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list every account in the ledger" }
func (*listCmd) Usage() string {
	return `ledgerctl list

  Prints one line per account: id, username, cash balance and holdings.
`
}
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	accounts, err := store.Accounts()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ids := make([]string, 0, len(accounts))
	for id := range accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tBALANCE\tHOLDINGS\tUPDATED")
	for _, id := range ids {
		acct := accounts[id]
		syms := make([]string, 0, len(acct.Holdings))
		for sym, n := range acct.Holdings {
			syms = append(syms, sym+"="+notifier.Shares(n))
		}
		sort.Strings(syms)
		updated := "-"
		if !acct.UpdatedAt.IsZero() {
			updated = acct.UpdatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, acct.Username, notifier.Money(acct.Balance), strings.Join(syms, " "), updated)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type showCmd struct {
	out io.Writer
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "print one account as JSON" }
func (*showCmd) Usage() string {
	return `ledgerctl show <user-id>
`
}
func (*showCmd) SetFlags(*flag.FlagSet) {}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	acct, ok, err := store.Get(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "no account %q\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "    ")
	if err := enc.Encode(acct); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type resetCmd struct {
	out io.Writer
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "reset an account to the starting balance" }
func (*resetCmd) Usage() string {
	return `ledgerctl reset <user-id>

  Sets the balance to the configured starting balance and clears holdings.
`
}
func (*resetCmd) SetFlags(*flag.FlagSet) {}

func (c *resetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	acct, err := store.Reset(f.Arg(0))
	if errors.Is(err, ledger.ErrUnknownUser) {
		fmt.Fprintf(os.Stderr, "no account %q\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.out, "%s reset to %s\n", f.Arg(0), notifier.Money(acct.Balance))
	return subcommands.ExitSuccess
}
