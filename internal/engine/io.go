package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
)

// maxInputSize is a safety limit to prevent memory exhaustion (100 MB).
const maxInputSize = 100 * 1024 * 1024

// readInput loads the document. Bytes are returned untouched (a BOM stays
// in place) so everything outside rewritten bodies round-trips exactly.
func readInput(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &InputNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("input is a directory, not a file: %s", path)
	}
	if fi.Size() > maxInputSize {
		return nil, fmt.Errorf("file too large (%d bytes, max %d)", fi.Size(), maxInputSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// diagnoseInput logs what looks off about the input. It never rejects it.
func diagnoseInput(data []byte, log *zap.Logger) {
	if len(data) == 0 {
		log.Warn("input file is empty")
		return
	}
	if !utf8.Valid(data) {
		fields := []zap.Field{}
		if r, err := chardet.NewHtmlDetector().DetectBest(data); err == nil {
			fields = append(fields, zap.String("detected_charset", r.Charset), zap.Int("confidence", r.Confidence))
		}
		log.Warn("input is not valid UTF-8; script bodies are decoded lossily by the engine", fields...)
	}
	if mt := mimetype.Detect(data); !mt.Is("text/html") {
		log.Debug("input does not look like HTML", zap.String("mime", mt.String()))
	}
}

// writeOutput creates parent directories as needed and writes data.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &OutputWriteError{Path: path, Op: "mkdir", Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &OutputWriteError{Path: path, Op: "write", Err: err}
	}
	return nil
}

func requireInOut(opts Options) error {
	if opts.InputFile == "" {
		return &UsageError{Msg: "missing input path"}
	}
	if opts.OutputFile == "" && !opts.DryRun {
		return &UsageError{Msg: "missing output path (use -dry-run for analysis only)"}
	}
	return nil
}
