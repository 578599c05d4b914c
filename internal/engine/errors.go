package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUsage is wrapped by UsageError.
var ErrUsage = errors.New("usage")

// UsageError reports a bad invocation; nothing is read or written.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func (e *UsageError) Unwrap() error { return ErrUsage }

// InputNotFoundError reports a missing input file.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return "input file not found: " + e.Path
}

// BlockError records an engine failure for one script block. The block is
// left as written and the run continues.
type BlockError struct {
	Index  int    // position among located blocks
	Offset int    // byte offset of the opening tag
	Engine string // engine name
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d at offset %d: %s: %v", e.Index, e.Offset, e.Engine, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// OutputWriteError reports a failure creating the output directory or file.
type OutputWriteError struct {
	Path string
	Op   string // "mkdir" or "write"
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("writing output %s (%s): %v", e.Path, e.Op, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// ErrorHint returns a helpful hint for common errors.
func ErrorHint(err error) string {
	if err == nil {
		return ""
	}
	var notFound *InputNotFoundError
	var usage *UsageError
	var write *OutputWriteError
	switch {
	case errors.As(err, &notFound):
		return "Check the input path. Use absolute paths or run from the project directory."
	case errors.As(err, &usage):
		return "Specify input and output: obfushtml page.html dist/page.html"
	case errors.As(err, &write):
		return "Check that the output directory is writable."
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no JavaScript obfuscation engine"):
		return "Pass -bundle path/to/javascript-obfuscator/dist/index.browser.js, or install node and javascript-obfuscator."
	case strings.Contains(msg, "does not define JavaScriptObfuscator"):
		return "Use the browser build of javascript-obfuscator (dist/index.browser.js)."
	case strings.Contains(msg, "too large"):
		return "The input file exceeds the safety limit. Split the document or increase the limit."
	case strings.Contains(msg, "invalid engine"):
		return "Valid engines: auto, goja, node."
	}
	return ""
}
