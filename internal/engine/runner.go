package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/benzoXdev/obfushtml/internal/jsobf"
	"github.com/benzoXdev/obfushtml/internal/logging"
)

// NoChangeMessage is printed when a pass rewrote nothing.
const NoChangeMessage = "No inline scripts were obfuscated (no matching inline <script> blocks found)."

// Run performs one pass with the engine and logger described by opts.
// The engine is only built when the document has a block to rewrite.
func Run(ctx context.Context, opts Options) error {
	log, err := newLogger(opts)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	_, err = execute(ctx, opts, log, true, func() (jsobf.Obfuscator, error) {
		return jsobf.Select(jsobf.Config{
			Engine:     opts.Engine,
			BundlePath: opts.Bundle,
			NodePath:   opts.NodePath,
			NodeDir:    opts.NodeDir,
			Timeout:    opts.Timeout,
			PoolSize:   opts.Jobs,
		})
	})
	return err
}

// RunWith performs one pass with a caller-supplied engine, which stays open.
func RunWith(ctx context.Context, opts Options, obf jsobf.Obfuscator, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return execute(ctx, opts, log, false, func() (jsobf.Obfuscator, error) {
		if obf == nil {
			return nil, jsobf.ErrNoEngine
		}
		return obf, nil
	})
}

// execute is the pass shared by Run and RunWith. ownEngine closes the engine
// on return when it implements io.Closer.
func execute(ctx context.Context, opts Options, log *zap.Logger, ownEngine bool, newEngine func() (jsobf.Obfuscator, error)) (*Result, error) {
	stdout, stderr := streams(opts)
	if err := requireInOut(opts); err != nil {
		return nil, err
	}
	if !opts.Quiet {
		fmt.Fprintln(stderr, bannerColor())
	}
	data, err := readInput(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	diagnoseInput(data, log)
	doc := string(data)

	if opts.DryRun {
		printPlan(stdout, doc)
		return nil, nil
	}

	start := time.Now()
	var obf jsobf.Obfuscator
	engineName := "none"
	if needsEngine(doc) {
		obf, err = newEngine()
		if err != nil {
			return nil, err
		}
		if c, ok := obf.(io.Closer); ok && ownEngine {
			defer c.Close()
		}
		engineName = obf.Name()
		log.Debug("engine ready", zap.String("engine", engineName))
	}

	jsOpts := jsobf.DefaultOptions()
	jsOpts.Seed = opts.Seed
	tr := &Transformer{Obfuscator: obf, Options: jsOpts, Jobs: opts.Jobs, Logger: log}
	res, err := tr.Transform(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("interrupted, output not written: %w", err)
	}
	if !res.Changed && !opts.Quiet {
		fmt.Fprintln(stdout, NoChangeMessage)
	}

	var warnings []string
	var check VerifyResult
	verified := false
	if opts.Verify {
		check, err = verifyScripts(doc, res.Document)
		if err != nil {
			log.Warn("verify skipped", zap.Error(err))
		} else {
			verified = true
			if !check.OK() {
				msg := fmt.Sprintf("script element count changed: %d in input, %d in output", check.Before, check.After)
				warnings = append(warnings, msg)
				log.Warn(msg)
			}
		}
	}

	if err := writeOutput(opts.OutputFile, []byte(res.Document)); err != nil {
		return res, err
	}
	if !opts.Quiet {
		fmt.Fprintf(stdout, "Obfuscated file written to %s\n", opts.OutputFile)
	}

	m := ComputeMetrics(doc, res)
	PrintMetrics(stderr, m, opts.Quiet)
	if opts.Report || opts.ReportJSON != "" {
		r := NewReport(opts, engineName, res, m)
		r.Duration = time.Since(start)
		r.Warnings = warnings
		if verified {
			r.Verified = true
			r.ScriptsIn, r.ScriptsOut = check.Before, check.After
		}
		if opts.Report {
			PrintReport(stderr, r)
		}
		if opts.ReportJSON != "" {
			if err := r.WriteJSON(opts.ReportJSON); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func needsEngine(doc string) bool {
	for _, b := range Locate(doc) {
		if Classify(b) == OutcomeObfuscate {
			return true
		}
	}
	return false
}

// printPlan lists located blocks and what a real pass would do with each.
func printPlan(w io.Writer, doc string) {
	blocks := Locate(doc)
	fmt.Fprintf(w, "%sDry-run:%s %d inline script block(s)\n", Cyan, Reset, len(blocks))
	eligible := 0
	for i, b := range blocks {
		o := Classify(b)
		action := o.String()
		if o == OutcomeObfuscate {
			eligible++
			action = "obfuscate"
		}
		fmt.Fprintf(w, "  #%d offset=%d body=%dB %s%s%s %s\n", i, b.Start, len(b.Body), Yellow, action, Reset, b.Open)
	}
	if eligible == 0 {
		fmt.Fprintln(w, NoChangeMessage)
	}
	fmt.Fprintf(w, "%sNo engine call or output (dry-run).%s\n", Gray, Reset)
}

func streams(opts Options) (stdout, stderr io.Writer) {
	stdout, stderr = opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

func newLogger(opts Options) (*zap.Logger, error) {
	cfg := logging.DefaultConfig()
	if opts.LogDev {
		cfg = logging.DevelopmentConfig()
	} else if opts.LogLevel != "" {
		cfg.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.LogFile)
	}
	return logging.New(cfg)
}
