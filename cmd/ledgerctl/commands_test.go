package main

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"DayTrader/internal/ledger"
	"DayTrader/internal/model"
)

func seedLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	store, err := ledger.NewStore(path, 100, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save("7", model.UserAccount{Username: "bob", Balance: 12.5, Holdings: model.Holdings{"TSLA": 2}}); err != nil {
		t.Fatal(err)
	}
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	ledgerFile = path
	return path
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cmd.Execute(context.Background(), fs)
}

func TestList(t *testing.T) {
	seedLedger(t)
	var out bytes.Buffer
	if st := run(t, &listCmd{out: &out}); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v", st)
	}
	if !strings.Contains(out.String(), "bob") || !strings.Contains(out.String(), "$12.50") || !strings.Contains(out.String(), "TSLA=2") {
		t.Errorf("list output:\n%s", out.String())
	}
}

func TestShow(t *testing.T) {
	seedLedger(t)
	var out bytes.Buffer
	if st := run(t, &showCmd{out: &out}, "7"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v", st)
	}
	if !strings.Contains(out.String(), `"money": 12.5`) {
		t.Errorf("show output:\n%s", out.String())
	}
	if st := run(t, &showCmd{out: &out}, "999"); st != subcommands.ExitFailure {
		t.Errorf("unknown id status = %v", st)
	}
	if st := run(t, &showCmd{out: &out}); st != subcommands.ExitUsageError {
		t.Errorf("missing id status = %v", st)
	}
}

func TestReset(t *testing.T) {
	path := seedLedger(t)
	var out bytes.Buffer
	if st := run(t, &resetCmd{out: &out}, "7"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v", st)
	}
	if !strings.Contains(out.String(), "7 reset to $100.00") {
		t.Errorf("reset output: %q", out.String())
	}
	l, err := ledger.LoadLedger(path)
	if err != nil {
		t.Fatal(err)
	}
	if l["7"].Balance != 100 || len(l["7"].Holdings) != 0 {
		t.Errorf("account after reset = %+v", l["7"])
	}
	if st := run(t, &resetCmd{out: &out}, "999"); st != subcommands.ExitFailure {
		t.Errorf("unknown id status = %v", st)
	}
}
