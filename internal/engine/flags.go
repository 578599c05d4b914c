package engine

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/benzoXdev/obfushtml/internal/config"
)

// ParseFlags parses the command line. Environment values from cfg are the
// flag defaults. helpOnly is true when help or version was printed and the
// caller should exit 0.
//
// Accepted forms:
//
//	obfushtml [flags] <input> <output>
//	obfushtml [flags] run <input> <output>
func ParseFlags(args []string, cfg *config.Config, stderr io.Writer) (opts Options, helpOnly bool, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	fs := flag.NewFlagSet("obfushtml", flag.ContinueOnError)
	// Parse errors are returned as UsageError and reported by the caller.
	fs.SetOutput(io.Discard)

	fs.BoolVar(&opts.Quiet, "q", false, "Quiet mode (no banner, metrics or notes).")
	fs.StringVar(&opts.Engine, "engine", cfg.Engine, "Obfuscation engine: auto|goja|node.")
	fs.StringVar(&opts.Bundle, "bundle", cfg.Bundle, "javascript-obfuscator browser bundle for the goja engine (dist/index.browser.js).")
	fs.StringVar(&opts.NodePath, "node", cfg.Node, "Node.js binary for the node engine.")
	fs.StringVar(&opts.NodeDir, "node-dir", cfg.NodeDir, "Directory node resolves javascript-obfuscator from.")
	fs.DurationVar(&opts.Timeout, "timeout", cfg.Timeout, "Per-block obfuscation timeout.")
	fs.IntVar(&opts.Jobs, "jobs", cfg.Jobs, "Blocks obfuscated concurrently (output order is unchanged).")
	fs.Int64Var(&opts.Seed, "seed", 0, "Engine seed (0=random). Set N for reproducible output.")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "List inline blocks and what would happen; write nothing.")
	fs.BoolVar(&opts.Report, "report", false, "Print a run report after writing.")
	fs.StringVar(&opts.ReportJSON, "report-json", "", "Write the run report as JSON to this file.")
	fs.BoolVar(&opts.Verify, "verify", false, "Re-parse input and output and warn if <script> element counts differ.")
	fs.StringVar(&opts.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error.")
	fs.BoolVar(&opts.LogDev, "log-dev", cfg.LogDev, "Development logging (debug level, caller info).")
	fs.StringVar(&opts.LogFile, "log", "", "Also write diagnostics to this file.")
	var showHelp, showVersion bool
	fs.BoolVar(&showHelp, "h", false, "Show help.")
	fs.BoolVar(&showHelp, "help", false, "Show help.")
	fs.BoolVar(&showVersion, "version", false, "Show version and exit.")
	fs.Usage = func() {}
	printUsage := func() {
		fs.SetOutput(stderr)
		usage(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage()
			return Options{}, true, nil
		}
		return Options{}, false, &UsageError{Msg: err.Error()}
	}
	if showVersion {
		fmt.Fprintln(stderr, VersionFull())
		return Options{}, true, nil
	}
	if showHelp {
		printUsage()
		return Options{}, true, nil
	}

	rest := fs.Args()
	if len(rest) > 1 && rest[0] == "run" {
		rest = rest[1:]
	}
	switch {
	case len(rest) == 2:
		opts.InputFile, opts.OutputFile = rest[0], rest[1]
	case len(rest) == 1 && opts.DryRun:
		opts.InputFile = rest[0]
	default:
		return opts, false, &UsageError{Msg: fmt.Sprintf("expected <input> <output>, got %d argument(s)", len(rest))}
	}
	if opts.Jobs < 1 {
		return opts, false, &UsageError{Msg: fmt.Sprintf("invalid -jobs: %d (>= 1)", opts.Jobs)}
	}
	if opts.Timeout < 0 {
		return opts, false, &UsageError{Msg: fmt.Sprintf("invalid -timeout: %s", opts.Timeout)}
	}
	return opts, false, nil
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  obfushtml [options] input.html output.html\n")
	fmt.Fprintf(w, "  obfushtml [options] run input.html output.html\n\n")
	fmt.Fprintf(w, "Inline <script> blocks are rewritten by javascript-obfuscator. Blocks with a src\n")
	fmt.Fprintf(w, "attribute, empty blocks and blocks containing %s are left alone.\n\n", OptOutMarker)
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nEnvironment: %s_ENGINE, %s_BUNDLE, %s_NODE, %s_NODE_DIR, %s_TIMEOUT, %s_JOBS,\n",
		config.Prefix, config.Prefix, config.Prefix, config.Prefix, config.Prefix, config.Prefix)
	fmt.Fprintf(w, "             %s_LOG_LEVEL, %s_LOG_DEV (flags take precedence).\n", config.Prefix, config.Prefix)
}

// Usage prints the usage text to w.
func Usage(w io.Writer) {
	_, _, _ = ParseFlags([]string{"-h"}, nil, w)
}
