package jsobf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dop251/goja"
)

// DefaultTimeout bounds a single obfuscation call.
const DefaultTimeout = 60 * time.Second

// globalName is the global the javascript-obfuscator browser bundle installs.
const globalName = "JavaScriptObfuscator"

// GojaConfig configures the in-process engine.
type GojaConfig struct {
	BundlePath string        // javascript-obfuscator browser bundle (dist/index.browser.js)
	Timeout    time.Duration // per-call limit, 0 = DefaultTimeout
	PoolSize   int           // max concurrent runtimes, 0 = GOMAXPROCS
}

// GojaEngine runs javascript-obfuscator inside goja VMs. The bundle is
// compiled once and replayed into each pooled runtime.
type GojaEngine struct {
	program *goja.Program
	pool    *runtimePool
	timeout time.Duration
}

type gojaRuntime struct {
	vm        *goja.Runtime
	api       goja.Value
	obfuscate goja.Callable
}

// NewGojaEngine loads and compiles the bundle at cfg.BundlePath.
func NewGojaEngine(cfg GojaConfig) (*GojaEngine, error) {
	if cfg.BundlePath == "" {
		return nil, errors.New("goja engine: bundle path is empty")
	}
	src, err := os.ReadFile(cfg.BundlePath)
	if err != nil {
		return nil, fmt.Errorf("goja engine: reading bundle: %w", err)
	}
	return NewGojaEngineFromSource(cfg.BundlePath, string(src), cfg)
}

// NewGojaEngineFromSource compiles bundle source directly. The first runtime
// is built eagerly so a bundle that does not expose JavaScriptObfuscator
// fails here instead of on the first block.
func NewGojaEngineFromSource(name, src string, cfg GojaConfig) (*GojaEngine, error) {
	program, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("goja engine: compiling bundle: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	e := &GojaEngine{program: program, timeout: timeout}
	e.pool = newRuntimePool(size, e.newRuntime)

	rt, err := e.pool.acquire(context.Background())
	if err != nil {
		return nil, err
	}
	e.pool.release(rt, false)
	return e, nil
}

func (e *GojaEngine) newRuntime() (*gojaRuntime, error) {
	vm := goja.New()
	global := vm.GlobalObject()
	// UMD bundles look for one of these before falling back to `this`.
	for _, alias := range []string{"window", "self", "global", "globalThis"} {
		if err := vm.Set(alias, global); err != nil {
			return nil, err
		}
	}
	if _, err := vm.RunProgram(e.program); err != nil {
		return nil, fmt.Errorf("goja engine: evaluating bundle: %w", err)
	}
	api := vm.Get(globalName)
	if api == nil || goja.IsUndefined(api) || goja.IsNull(api) {
		return nil, fmt.Errorf("goja engine: bundle does not define %s", globalName)
	}
	fn, ok := goja.AssertFunction(api.ToObject(vm).Get("obfuscate"))
	if !ok {
		return nil, fmt.Errorf("goja engine: %s.obfuscate is not a function", globalName)
	}
	return &gojaRuntime{vm: vm, api: api, obfuscate: fn}, nil
}

// Name implements Obfuscator.
func (e *GojaEngine) Name() string { return "goja" }

// Obfuscate implements Obfuscator.
func (e *GojaEngine) Obfuscate(ctx context.Context, source string, opts Options) (string, error) {
	rt, err := e.pool.acquire(ctx)
	if err != nil {
		return "", err
	}
	out, interrupted, err := e.run(ctx, rt, source, opts)
	e.pool.release(rt, interrupted)
	return out, err
}

func (e *GojaEngine) run(ctx context.Context, rt *gojaRuntime, source string, opts Options) (string, bool, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-timer.C:
			rt.vm.Interrupt("obfuscation timeout exceeded")
		case <-ctx.Done():
			rt.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	code, err := rt.call(source, opts)
	close(done)
	<-stopped
	rt.vm.ClearInterrupt()

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return "", true, fmt.Errorf("goja engine: %w", err)
		}
		return "", false, fmt.Errorf("goja engine: %w", err)
	}
	return code, false, nil
}

func (rt *gojaRuntime) call(source string, opts Options) (string, error) {
	jsOpts := rt.vm.NewObject()
	for k, v := range opts.Map() {
		if err := jsOpts.Set(k, v); err != nil {
			return "", err
		}
	}
	res, err := rt.obfuscate(rt.api, rt.vm.ToValue(source), jsOpts)
	if err != nil {
		return "", err
	}
	if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
		return "", ErrEmptyOutput
	}
	obj := res.ToObject(rt.vm)
	get, ok := goja.AssertFunction(obj.Get("getObfuscatedCode"))
	if !ok {
		return "", errors.New("obfuscation result has no getObfuscatedCode()")
	}
	code, err := get(obj)
	if err != nil {
		return "", err
	}
	// An empty string is valid output (a comment-only body compiles to nothing).
	if code == nil || goja.IsUndefined(code) || goja.IsNull(code) {
		return "", ErrEmptyOutput
	}
	return code.String(), nil
}

// Close releases pooled runtimes.
func (e *GojaEngine) Close() error {
	e.pool.close()
	return nil
}
