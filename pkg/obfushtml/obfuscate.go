// Package obfushtml obfuscates the inline <script> blocks of an HTML document.
package obfushtml

import (
	"context"

	"github.com/benzoXdev/obfushtml/internal/engine"
	"github.com/benzoXdev/obfushtml/internal/jsobf"
)

type (
	Obfuscator   = jsobf.Obfuscator
	Options      = jsobf.Options
	EngineConfig = jsobf.Config
	Result       = engine.Result
)

// DefaultOptions returns the fixed javascript-obfuscator configuration.
func DefaultOptions() Options {
	return jsobf.DefaultOptions()
}

// NewEngine builds an obfuscation engine (goja or node).
func NewEngine(cfg EngineConfig) (Obfuscator, error) {
	return jsobf.Select(cfg)
}

// Obfuscate rewrites every eligible inline script of html through obf.
// Per-block engine failures are reported in Result.Failures, not as err.
func Obfuscate(ctx context.Context, html string, obf Obfuscator) (*Result, error) {
	t := engine.Transformer{Obfuscator: obf, Options: jsobf.DefaultOptions()}
	return t.Transform(ctx, html)
}
