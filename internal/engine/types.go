package engine

import (
	"io"
	"time"
)

// Options configures one run of the tool.
type Options struct {
	InputFile  string
	OutputFile string
	Quiet      bool

	// Engine selection (see jsobf.Select).
	Engine   string
	Bundle   string // javascript-obfuscator browser bundle for the goja engine
	NodePath string
	NodeDir  string
	Timeout  time.Duration // per block
	Jobs     int
	Seed     int64 // 0 = engine picks

	DryRun     bool   // locate and classify only; no engine, no output
	Report     bool   // print run report to stderr
	ReportJSON string // write run report as JSON to this path
	Verify     bool   // compare <script> element counts of input and output

	LogLevel string
	LogDev   bool
	LogFile  string // optional: also write diagnostics here

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}
