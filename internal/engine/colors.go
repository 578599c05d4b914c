package engine

import (
	"io"
	"os"
)

// ANSI color codes for CLI messages. Empty when stderr is not a terminal
// or NO_COLOR is set.
var (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
)

func init() {
	if !colorEnabled(os.Stderr, os.Getenv("NO_COLOR")) {
		disableColors()
	}
}

func disableColors() {
	Reset, Bold, Red, Green, Yellow, Cyan, Gray = "", "", "", "", "", "", ""
}

// colorEnabled reports whether w is a terminal and noColor (the NO_COLOR
// value) is unset.
func colorEnabled(w io.Writer, noColor string) bool {
	if noColor != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
