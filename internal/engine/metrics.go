package engine

import (
	"fmt"
	"io"
	"math"
)

// Metrics holds objective measures on one run.
type Metrics struct {
	InputSizeBytes  int     // document size before
	OutputSizeBytes int     // document size after
	SizeRatio       float64 // output/input (>1 = larger)
	ScriptBytesIn   int     // bytes of bodies sent to the engine
	ScriptBytesOut  int     // bytes of bodies written back
	Entropy         float64 // bits per symbol over rewritten bodies
}

// ComputeMetrics derives metrics from a finished pass.
func ComputeMetrics(input string, res *Result) Metrics {
	m := Metrics{InputSizeBytes: len(input), OutputSizeBytes: len(res.Document)}
	if m.InputSizeBytes > 0 {
		m.SizeRatio = float64(m.OutputSizeBytes) / float64(m.InputSizeBytes)
	}
	for _, b := range res.Blocks {
		if b.Outcome != OutcomeObfuscate {
			continue
		}
		m.ScriptBytesIn += b.InSize
		m.ScriptBytesOut += b.OutSize
	}
	m.Entropy = codeEntropy(res)
	return m
}

// codeEntropy is the Shannon entropy of the engine output across blocks.
func codeEntropy(res *Result) float64 {
	var freq [256]int
	total := 0
	for _, b := range res.Blocks {
		for i := 0; i < len(b.Code); i++ {
			freq[b.Code[i]]++
		}
		total += len(b.Code)
	}
	return entropy(freq[:], total)
}

func entropy(freq []int, total int) float64 {
	if total == 0 {
		return 0
	}
	n := float64(total)
	e := 0.0
	for _, c := range freq {
		if c <= 0 {
			continue
		}
		p := float64(c) / n
		e -= p * math.Log2(p)
	}
	return e
}

// PrintMetrics writes a one-line summary (if !quiet).
func PrintMetrics(w io.Writer, m Metrics, quiet bool) {
	if quiet {
		return
	}
	line := fmt.Sprintf("%sMetrics:%s size=%s%d%s bytes | scripts=%d->%d bytes | entropy=%.2f",
		Cyan, Reset, Green, m.OutputSizeBytes, Reset, m.ScriptBytesIn, m.ScriptBytesOut, m.Entropy)
	if m.SizeRatio > 0 {
		line += fmt.Sprintf(" | ratio=%.1fx", m.SizeRatio)
	}
	fmt.Fprintln(w, line)
}
