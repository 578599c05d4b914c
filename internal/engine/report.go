package engine

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
)

// Report holds one run's data for humans and CI.
type Report struct {
	InputPath   string        `json:"inputPath"`
	OutputPath  string        `json:"outputPath"`
	Engine      string        `json:"engine"`
	Blocks      int           `json:"blocks"`
	Obfuscated  int           `json:"obfuscated"`
	OptOut      int           `json:"optOut"`
	Empty       int           `json:"empty"`
	Failed      int           `json:"failed"`
	Failures    []string      `json:"failures,omitempty"`
	InputSize   int           `json:"inputSize"`
	OutputSize  int           `json:"outputSize"`
	SizeRatio   float64       `json:"sizeRatio,omitempty"`
	Entropy     float64       `json:"entropy,omitempty"`
	Seed        int64         `json:"seed,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Changed     bool          `json:"changed"`
	ScriptsIn   int           `json:"scriptsIn,omitempty"`
	ScriptsOut  int           `json:"scriptsOut,omitempty"`
	Verified    bool          `json:"verified,omitempty"`
}

// NewReport summarises a finished pass.
func NewReport(opts Options, engine string, res *Result, m Metrics) Report {
	r := Report{
		InputPath:  opts.InputFile,
		OutputPath: opts.OutputFile,
		Engine:     engine,
		Blocks:     len(res.Blocks),
		Obfuscated: res.Count(OutcomeObfuscate),
		OptOut:     res.Count(OutcomeOptOut),
		Empty:      res.Count(OutcomeEmpty),
		Failed:     res.Count(OutcomeFailed),
		InputSize:  m.InputSizeBytes,
		OutputSize: m.OutputSizeBytes,
		SizeRatio:  m.SizeRatio,
		Entropy:    m.Entropy,
		Seed:       opts.Seed,
		Changed:    res.Changed,
	}
	for _, f := range res.Failures {
		r.Failures = append(r.Failures, f.Error())
	}
	return r
}

// ToJSON returns the report as indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(r, "", "  ")
}

// WriteJSON writes the report to path.
func (r *Report) WriteJSON(path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// PrintReport writes the human-readable report.
func PrintReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%s%s=== obfushtml Report ===%s\n", Bold, Cyan, Reset)
	fmt.Fprintf(w, "%sInput:%s    %s\n", Yellow, Reset, r.InputPath)
	fmt.Fprintf(w, "%sOutput:%s   %s\n", Yellow, Reset, r.OutputPath)
	fmt.Fprintf(w, "%sEngine:%s   %s%s%s\n", Yellow, Reset, Green, r.Engine, Reset)
	fmt.Fprintf(w, "%sBlocks:%s   %d (obfuscated %s%d%s, opt-out %d, empty %d, failed %d)\n",
		Yellow, Reset, r.Blocks, Green, r.Obfuscated, Reset, r.OptOut, r.Empty, r.Failed)
	fmt.Fprintf(w, "%sInput size:%s  %d bytes\n", Yellow, Reset, r.InputSize)
	fmt.Fprintf(w, "%sOutput size:%s %d bytes", Yellow, Reset, r.OutputSize)
	if r.SizeRatio > 0 {
		fmt.Fprintf(w, " %s(%.1fx)%s", Gray, r.SizeRatio, Reset)
	}
	fmt.Fprintln(w, "")
	if r.Entropy > 0 {
		fmt.Fprintf(w, "%sEntropy:%s   %.2f bits/symbol\n", Yellow, Reset, r.Entropy)
	}
	if r.Seed != 0 {
		fmt.Fprintf(w, "%sSeed:%s %d\n", Yellow, Reset, r.Seed)
	}
	if r.Verified {
		fmt.Fprintf(w, "%sScripts:%s %d in, %d out\n", Yellow, Reset, r.ScriptsIn, r.ScriptsOut)
	}
	if r.Duration > 0 {
		fmt.Fprintf(w, "%sDuration:%s  %s\n", Yellow, Reset, r.Duration.Round(time.Millisecond))
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "%sFailures:%s\n", Red, Reset)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "%sWarnings:%s\n", Red, Reset)
		for _, f := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	fmt.Fprintf(w, "%s%s========================%s\n", Bold, Cyan, Reset)
}
