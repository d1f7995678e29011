package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/ledger"
	"github.com/hazyhaar/wuyu-lexeme/pkg/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "clean":
		cmdClean(os.Args[2:])
	case "runs":
		cmdRuns(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: lexeme <command>\n\nCommands:\n  clean   Normalize raw survey tables into the lexeme table\n  runs    List recorded runs\n")
}

func cmdClean(args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	cfgPath := fs.String("config", "lexeme.yaml", "path to config file")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := loadConfig(*cfgPath, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, logger)
	if cfg.Ledger != "" {
		l, err := ledger.Open(cfg.Ledger)
		if err != nil {
			logger.Error("open ledger", "error", err)
			os.Exit(1)
		}
		defer l.Close()
		p.Ledger = l
	}

	report, err := p.Run(ctx)
	if err != nil {
		// Partially written output, if any, is left in place.
		logger.Error("clean failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("OK -> %s (%d rows, %d dropped, %d without slot)\n",
		report.OutputPath, report.RowsOut, report.Filter.Dropped, report.Join.Unmatched)
}

func loadConfig(path string, logger *slog.Logger) *config.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("no config file, using defaults", "path", path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	return cfg
}
