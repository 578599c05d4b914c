package jsobf

import (
	"fmt"
	"strings"
	"time"
)

// Engine names accepted by Select.
const (
	EngineAuto = "auto"
	EngineGoja = "goja"
	EngineNode = "node"
)

// Config selects and configures an engine.
type Config struct {
	Engine     string
	BundlePath string
	NodePath   string
	NodeDir    string
	Timeout    time.Duration
	PoolSize   int
}

// Select builds the engine named by cfg.Engine. "auto" prefers the
// in-process goja engine when a bundle is configured and falls back to Node.js.
func Select(cfg Config) (Obfuscator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case EngineGoja:
		return NewGojaEngine(GojaConfig{BundlePath: cfg.BundlePath, Timeout: cfg.Timeout, PoolSize: cfg.PoolSize})
	case EngineNode:
		return NewNodeEngine(NodeConfig{NodePath: cfg.NodePath, Dir: cfg.NodeDir, Timeout: cfg.Timeout})
	case "", EngineAuto:
		if cfg.BundlePath != "" {
			return NewGojaEngine(GojaConfig{BundlePath: cfg.BundlePath, Timeout: cfg.Timeout, PoolSize: cfg.PoolSize})
		}
		if e, err := NewNodeEngine(NodeConfig{NodePath: cfg.NodePath, Dir: cfg.NodeDir, Timeout: cfg.Timeout}); err == nil {
			return e, nil
		}
		return nil, fmt.Errorf("%w: set -bundle to a javascript-obfuscator browser bundle or install node", ErrNoEngine)
	default:
		return nil, fmt.Errorf("invalid engine: %s (auto|goja|node)", cfg.Engine)
	}
}
