package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hazyhaar/wuyu-lexeme/pkg/ledger"
)

func cmdRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", "lexeme.yaml", "path to config file")
	limit := fs.Int("n", 20, "number of runs to show (0 = all)")
	sources := fs.Bool("sources", false, "also list the sources of each run")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := loadConfig(*cfgPath, logger)
	if cfg.Ledger == "" {
		fmt.Fprintln(os.Stderr, "ledger disabled: set `ledger` in the config file")
		os.Exit(1)
	}

	l, err := ledger.Open(cfg.Ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open ledger: %v\n", err)
		os.Exit(1)
	}
	defer l.Close()

	runs, err := l.ListRuns(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}

	for _, r := range runs {
		started := time.Unix(r.StartedAt, 0).Format(time.DateTime)
		fmt.Printf("%s  %s  %-7s  in=%d dropped=%d out=%d", r.RunID, started, r.Status, r.RowsIn, r.RowsDropped, r.RowsOut)
		if r.OutputSHA256 != nil {
			fmt.Printf("  sha256=%.12s", *r.OutputSHA256)
		}
		if r.Error != nil && *r.Error != "" {
			fmt.Printf("  error=%q", *r.Error)
		}
		fmt.Println()

		if !*sources {
			continue
		}
		srcs, err := l.Sources(r.RunID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  sources: %v\n", err)
			continue
		}
		for _, s := range srcs {
			fmt.Printf("    %-25s  %-6s  %d rows", s.Source, s.Kind, s.Rows)
			if s.Note != "" {
				fmt.Printf("  (%s)", s.Note)
			}
			fmt.Println()
		}
	}
}
