package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/benzoXdev/obfushtml/internal/jsobf"
)

// OptOutMarker in a script body keeps the block away from the engine.
const OptOutMarker = "DO-NOT-OBFUSCATE"

// ErrNoObfuscator is returned when eligible blocks exist but no engine is set.
var ErrNoObfuscator = errors.New("no obfuscator configured")

// Outcome is what happened to one located block.
type Outcome int

const (
	// OutcomeObfuscate marks a block that is sent to the engine; after the
	// pass it means the block was rewritten.
	OutcomeObfuscate Outcome = iota
	OutcomeEmpty
	OutcomeOptOut
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeObfuscate:
		return "obfuscated"
	case OutcomeEmpty:
		return "empty"
	case OutcomeOptOut:
		return "opt-out"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Classify applies the per-block policy that needs no engine call.
func Classify(b Block) Outcome {
	switch {
	case b.Empty():
		return OutcomeEmpty
	case strings.Contains(b.Body, OptOutMarker):
		return OutcomeOptOut
	}
	return OutcomeObfuscate
}

// BlockOutcome describes one block after the pass.
type BlockOutcome struct {
	Index   int
	Offset  int
	Outcome Outcome
	InSize  int    // body bytes before
	OutSize int    // engine output bytes
	Code    string // engine output, before escaping
	Err     error
}

// Result is the transformed document plus what the pass did.
type Result struct {
	Document string
	Changed  bool
	Blocks   []BlockOutcome
	Failures []*BlockError
}

// Count returns how many blocks ended with outcome o.
func (r *Result) Count(o Outcome) int {
	n := 0
	for _, b := range r.Blocks {
		if b.Outcome == o {
			n++
		}
	}
	return n
}

// Transformer rewrites inline script blocks through an Obfuscator.
type Transformer struct {
	Obfuscator jsobf.Obfuscator
	Options    jsobf.Options
	Jobs       int // concurrent engine calls; <= 1 is sequential
	Logger     *zap.Logger
}

// Transform runs one pass over doc. Engine failures are recorded per block
// and never abort the pass; replacements are spliced in document order.
func (t *Transformer) Transform(ctx context.Context, doc string) (*Result, error) {
	log := t.Logger
	if log == nil {
		log = zap.NewNop()
	}
	blocks := Locate(doc)
	res := &Result{Blocks: make([]BlockOutcome, len(blocks))}
	replacements := make([]string, len(blocks))

	var pending []int
	for i, b := range blocks {
		o := Classify(b)
		res.Blocks[i] = BlockOutcome{Index: i, Offset: b.Start, Outcome: o, InSize: len(b.Body)}
		if o == OutcomeObfuscate {
			pending = append(pending, i)
		} else {
			log.Debug("block skipped", zap.Int("block", i), zap.Int("offset", b.Start), zap.Stringer("reason", o))
		}
	}
	if len(pending) > 0 && t.Obfuscator == nil {
		return nil, ErrNoObfuscator
	}

	work := func(i int) {
		replacements[i], res.Blocks[i] = t.obfuscateBlock(ctx, log, blocks[i], res.Blocks[i])
	}
	if t.Jobs <= 1 || len(pending) <= 1 {
		for _, i := range pending {
			work(i)
		}
	} else {
		runParallel(pending, t.Jobs, work)
	}

	var sb strings.Builder
	sb.Grow(len(doc))
	last := 0
	for i, b := range blocks {
		bo := res.Blocks[i]
		switch bo.Outcome {
		case OutcomeObfuscate:
			sb.WriteString(doc[last:b.Start])
			sb.WriteString(replacements[i])
			last = b.End
			res.Changed = true
		case OutcomeFailed:
			var be *BlockError
			if errors.As(bo.Err, &be) {
				res.Failures = append(res.Failures, be)
			}
		}
	}
	sb.WriteString(doc[last:])
	res.Document = sb.String()
	return res, nil
}

func (t *Transformer) obfuscateBlock(ctx context.Context, log *zap.Logger, b Block, bo BlockOutcome) (replacement string, out BlockOutcome) {
	out = bo
	fail := func(err error) {
		be := &BlockError{Index: bo.Index, Offset: bo.Offset, Engine: t.Obfuscator.Name(), Err: err}
		out.Outcome = OutcomeFailed
		out.Err = be
		replacement = ""
		log.Error("obfuscation failed, leaving original block",
			zap.Int("block", be.Index),
			zap.Int("offset", be.Offset),
			zap.String("engine", be.Engine),
			zap.Error(err))
	}
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("engine panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		fail(err)
		return
	}
	code, err := t.Obfuscator.Obfuscate(ctx, b.Body, t.Options)
	if err != nil {
		fail(err)
		return
	}
	replacement = Reinsert(b, code)
	out.Code = code
	out.OutSize = len(code)
	log.Debug("block obfuscated", zap.Int("block", bo.Index), zap.Int("in", out.InSize), zap.Int("out", out.OutSize))
	return
}

// runParallel calls fn for every index with at most jobs calls in flight.
// Each index is handled exactly once, so fn may write to per-index slots.
func runParallel(indices []int, jobs int, fn func(int)) {
	if jobs > len(indices) {
		jobs = len(indices)
	}
	ch := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				fn(i)
			}
		}()
	}
	for _, i := range indices {
		ch <- i
	}
	close(ch)
	wg.Wait()
}
