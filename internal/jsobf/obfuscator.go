// Package jsobf wraps JavaScript obfuscation engines behind a single port.
//
// The HTML transform only needs "source in, obfuscated source out"; which
// engine does the work (javascript-obfuscator inside goja, or the same
// package under Node.js) is a deployment detail chosen by Select.
package jsobf

import (
	"context"
	"errors"
)

var (
	// ErrNoEngine is returned by Select when no engine can be constructed.
	ErrNoEngine = errors.New("no JavaScript obfuscation engine available")
	// ErrEmptyOutput is returned when an engine reports success but yields no code.
	ErrEmptyOutput = errors.New("obfuscator returned empty output")
)

// Obfuscator rewrites JavaScript source into an equivalent, harder to read form.
// Implementations must be safe for concurrent use.
type Obfuscator interface {
	Obfuscate(ctx context.Context, source string, opts Options) (string, error)
	Name() string
}

// Options mirrors the subset of javascript-obfuscator options the tool sets.
// Field names are the engine's own option keys.
type Options struct {
	Compact                        bool    `json:"compact"`
	ControlFlowFlattening          bool    `json:"controlFlowFlattening"`
	ControlFlowFlatteningThreshold float64 `json:"controlFlowFlatteningThreshold"`
	DeadCodeInjection              bool    `json:"deadCodeInjection"`
	DeadCodeInjectionThreshold     float64 `json:"deadCodeInjectionThreshold"`
	DebugProtection                bool    `json:"debugProtection"`
	StringArray                    bool    `json:"stringArray"`
	StringArrayThreshold           float64 `json:"stringArrayThreshold"`
	TransformObjectKeys            bool    `json:"transformObjectKeys"`
	Simplify                       bool    `json:"simplify"`
	Seed                           int64   `json:"seed,omitempty"`
}

// DefaultOptions returns the fixed configuration applied to every inline block.
func DefaultOptions() Options {
	return Options{
		Compact:                        true,
		ControlFlowFlattening:          true,
		ControlFlowFlatteningThreshold: 0.75,
		DeadCodeInjection:              true,
		DeadCodeInjectionThreshold:     0.4,
		DebugProtection:                false,
		StringArray:                    true,
		StringArrayThreshold:           0.75,
		TransformObjectKeys:            true,
		Simplify:                       true,
	}
}

// Map returns the options as a plain object for handing to a JS runtime.
func (o Options) Map() map[string]interface{} {
	m := map[string]interface{}{
		"compact":                        o.Compact,
		"controlFlowFlattening":          o.ControlFlowFlattening,
		"controlFlowFlatteningThreshold": o.ControlFlowFlatteningThreshold,
		"deadCodeInjection":              o.DeadCodeInjection,
		"deadCodeInjectionThreshold":     o.DeadCodeInjectionThreshold,
		"debugProtection":                o.DebugProtection,
		"stringArray":                    o.StringArray,
		"stringArrayThreshold":           o.StringArrayThreshold,
		"transformObjectKeys":            o.TransformObjectKeys,
		"simplify":                       o.Simplify,
	}
	if o.Seed != 0 {
		m["seed"] = o.Seed
	}
	return m
}

// Func adapts a plain function to the Obfuscator interface.
type Func func(ctx context.Context, source string, opts Options) (string, error)

// Obfuscate calls f.
func (f Func) Obfuscate(ctx context.Context, source string, opts Options) (string, error) {
	return f(ctx, source, opts)
}

// Name implements Obfuscator.
func (f Func) Name() string { return "func" }
