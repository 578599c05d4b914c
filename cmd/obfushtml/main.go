package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benzoXdev/obfushtml/internal/config"
	"github.com/benzoXdev/obfushtml/internal/engine"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Ctrl+C cancels the pass; nothing is written for an interrupted run.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", engine.Red, engine.Reset, err)
		return 1
	}
	opts, helpOnly, err := engine.ParseFlags(args, cfg, os.Stderr)
	if helpOnly {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", engine.Red, engine.Reset, err)
		engine.Usage(os.Stderr)
		return 1
	}

	start := time.Now()
	if err := engine.Run(ctx, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "\n%sInterrupted.%s\n", engine.Yellow, engine.Reset)
			return 130
		}
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", engine.Red, engine.Reset, err)
		if hint := engine.ErrorHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "%sHint:%s %s\n", engine.Gray, engine.Reset, hint)
		}
		return 1
	}
	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "%sDone in %s%s\n", engine.Gray, time.Since(start).Round(time.Millisecond), engine.Reset)
	}
	return 0
}
