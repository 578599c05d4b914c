package jsobf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// nodeDriver reads the script from stdin, the options as JSON from argv[1]
// and prints the obfuscated code to stdout. Exit status 3 means the engine
// produced no result at all; an empty string is still printed as success.
const nodeDriver = `let src = '';
process.stdin.setEncoding('utf8');
process.stdin.on('data', (c) => { src += c; });
process.stdin.on('end', () => {
  try {
    const JavaScriptObfuscator = require('javascript-obfuscator');
    const opts = JSON.parse(process.argv[1]);
    const result = JavaScriptObfuscator.obfuscate(src, opts);
    const code = result == null ? null : result.getObfuscatedCode();
    if (code == null) {
      process.stderr.write('obfuscator returned empty output');
      process.exit(3);
    }
    process.stdout.write(code);
  } catch (err) {
    process.stderr.write(String(err && err.stack || err));
    process.exit(2);
  }
});`

// NodeConfig configures the out-of-process engine.
type NodeConfig struct {
	NodePath string        // node binary; empty = look up "node" on PATH
	Dir      string        // working dir for require() resolution; empty = current
	Timeout  time.Duration // per-call limit, 0 = DefaultTimeout
}

// NodeEngine runs javascript-obfuscator under Node.js, one process per call.
type NodeEngine struct {
	node    string
	dir     string
	timeout time.Duration
}

// NewNodeEngine resolves the node binary.
func NewNodeEngine(cfg NodeConfig) (*NodeEngine, error) {
	node := cfg.NodePath
	if node == "" {
		node = "node"
	}
	p, err := exec.LookPath(node)
	if err != nil {
		return nil, fmt.Errorf("node engine: %s not found: %w", node, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &NodeEngine{node: p, dir: cfg.Dir, timeout: timeout}, nil
}

// Name implements Obfuscator.
func (e *NodeEngine) Name() string { return "node" }

// Obfuscate implements Obfuscator.
func (e *NodeEngine) Obfuscate(ctx context.Context, source string, opts Options) (string, error) {
	optJSON, err := sonic.MarshalString(opts)
	if err != nil {
		return "", fmt.Errorf("node engine: encoding options: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.node, "-e", nodeDriver, optJSON)
	cmd.Dir = e.dir
	cmd.Stdin = strings.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("node engine: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 3 {
			return "", ErrEmptyOutput
		}
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return "", fmt.Errorf("node engine: %w (stderr: %s)", err, firstLine(stderr.String()))
		}
		return "", fmt.Errorf("node engine: %w", err)
	}
	return stdout.String(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
