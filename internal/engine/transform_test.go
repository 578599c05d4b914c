package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benzoXdev/obfushtml/internal/jsobf"
)

// upper is a stand-in engine: its output always differs from lowercase input.
type upper struct {
	calls atomic.Int32
	fail  string // bodies containing this fail
}

func (u *upper) Name() string { return "upper" }

func (u *upper) Obfuscate(_ context.Context, src string, _ jsobf.Options) (string, error) {
	u.calls.Add(1)
	if u.fail != "" && strings.Contains(src, u.fail) {
		return "", errors.New("SyntaxError: Unexpected token")
	}
	return strings.ToUpper(src), nil
}

func transform(t *testing.T, obf jsobf.Obfuscator, doc string) *Result {
	t.Helper()
	tr := &Transformer{Obfuscator: obf, Options: jsobf.DefaultOptions()}
	res, err := tr.Transform(context.Background(), doc)
	require.NoError(t, err)
	return res
}

func TestTransformOptOut(t *testing.T) {
	doc := `<html><body><script>console.log('DO-NOT-OBFUSCATE');</script></body></html>`
	u := &upper{}
	res := transform(t, u, doc)

	assert.Equal(t, doc, res.Document)
	assert.False(t, res.Changed)
	assert.NotContains(t, res.Document, ObfuscatedMarker)
	assert.Equal(t, int32(0), u.calls.Load())
	assert.Equal(t, 1, res.Count(OutcomeOptOut))
}

func TestTransformSrcScriptUntouched(t *testing.T) {
	doc := `<script src="a.js"></script>`
	u := &upper{}
	res := transform(t, u, doc)

	assert.Equal(t, doc, res.Document)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Blocks)
	assert.Equal(t, int32(0), u.calls.Load())
}

func TestTransformEmptyScript(t *testing.T) {
	for _, doc := range []string{`<script></script>`, "<script>\n   \t\n</script>"} {
		u := &upper{}
		res := transform(t, u, doc)

		assert.Equal(t, doc, res.Document)
		assert.False(t, res.Changed)
		assert.Equal(t, 1, res.Count(OutcomeEmpty))
		assert.Equal(t, int32(0), u.calls.Load())
	}
}

func TestTransformInlineScript(t *testing.T) {
	doc := `<p>hi</p><script>var x=1+2;</script><p>bye</p>`
	res := transform(t, &upper{}, doc)

	require.True(t, res.Changed)
	assert.Equal(t, "<p>hi</p><script>\n/* obfuscated */\nVAR X=1+2;\n</script><p>bye</p>", res.Document)
	assert.NotContains(t, res.Document, "var x=1+2;")
	assert.Equal(t, 1, res.Count(OutcomeObfuscate))
	assert.Equal(t, len("var x=1+2;"), res.Blocks[0].InSize)
	assert.Equal(t, "VAR X=1+2;", res.Blocks[0].Code)
}

func TestTransformKeepsTagsVerbatim(t *testing.T) {
	doc := "<SCRIPT type=\"text/javascript\"\n nonce=\"r4nd\">let a = 'b';</Script>"
	res := transform(t, &upper{}, doc)

	blocks := Locate(res.Document)
	require.Len(t, blocks, 1)
	assert.Equal(t, "<SCRIPT type=\"text/javascript\"\n nonce=\"r4nd\">", blocks[0].Open)
	assert.Equal(t, "</Script>", blocks[0].Close)
	assert.NotEqual(t, "let a = 'b';", blocks[0].Body)
}

func TestTransformMixedDocument(t *testing.T) {
	doc := strings.Join([]string{
		`<script src="lib.js"></script>`,
		`<script>  </script>`,
		`<script>/* DO-NOT-OBFUSCATE */ var cfg = {};</script>`,
		`<script>run();</script>`,
	}, "\n")
	u := &upper{}
	res := transform(t, u, doc)

	assert.True(t, res.Changed)
	assert.Equal(t, int32(1), u.calls.Load())
	assert.Equal(t, []Outcome{OutcomeEmpty, OutcomeOptOut, OutcomeObfuscate}, outcomes(res))
	assert.True(t, strings.HasPrefix(res.Document, `<script src="lib.js"></script>`+"\n<script>  </script>\n"))
	assert.Contains(t, res.Document, "RUN();")
}

func TestTransformCommentOnlyBody(t *testing.T) {
	// Engines drop comments, so a comment-only body comes back empty.
	stripComments := jsobf.Func(func(_ context.Context, src string, _ jsobf.Options) (string, error) {
		var kept []string
		for _, line := range strings.Split(src, "\n") {
			if l := strings.TrimSpace(line); l != "" && !strings.HasPrefix(l, "//") {
				kept = append(kept, l)
			}
		}
		return strings.Join(kept, "\n"), nil
	})
	core, logs := observer.New(zapcore.DebugLevel)
	tr := &Transformer{Obfuscator: stripComments, Options: jsobf.DefaultOptions(), Logger: zap.New(core)}
	res, err := tr.Transform(context.Background(), "<p></p><script>// analytics disabled\n</script>")
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Empty(t, res.Failures)
	assert.Equal(t, OutcomeObfuscate, res.Blocks[0].Outcome)
	assert.Equal(t, "<p></p><script>\n/* obfuscated */\n\n</script>", res.Document)
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestTransformEngineFailureKeepsBlock(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	doc := `<script>good()</script><script>bad(</script><script>also()</script>`
	u := &upper{fail: "bad("}
	tr := &Transformer{Obfuscator: u, Options: jsobf.DefaultOptions(), Logger: zap.New(core)}
	res, err := tr.Transform(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Contains(t, res.Document, "<script>bad(</script>")
	assert.Contains(t, res.Document, "GOOD()")
	assert.Contains(t, res.Document, "ALSO()")
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Equal(t, "upper", res.Failures[0].Engine)
	assert.Contains(t, res.Failures[0].Error(), "Unexpected token")

	entries := logs.FilterMessage("obfuscation failed, leaving original block").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["block"])
}

func TestTransformAllFailuresIsNoChange(t *testing.T) {
	doc := `<script>bad(</script>`
	res := transform(t, &upper{fail: "bad"}, doc)
	assert.Equal(t, doc, res.Document)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, res.Count(OutcomeFailed))
}

func TestTransformRecoversEnginePanic(t *testing.T) {
	boom := jsobf.Func(func(context.Context, string, jsobf.Options) (string, error) {
		panic("engine exploded")
	})
	doc := `<script>x()</script>`
	res := transform(t, boom, doc)

	assert.Equal(t, doc, res.Document)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Error(), "engine exploded")
}

func TestTransformEscapesClosingTagInOutput(t *testing.T) {
	leaky := jsobf.Func(func(_ context.Context, src string, _ jsobf.Options) (string, error) {
		return `var s="</script><script>alert(1)</SCRIPT>";` + src, nil
	})
	doc := `<html><body><script>go()</script></body></html>`
	res := transform(t, leaky, doc)

	assert.Contains(t, res.Document, `<\/script><script>alert(1)<\/SCRIPT>`)
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(res.Document))
	require.NoError(t, err)
	assert.Equal(t, 1, gq.Find("script").Length())
}

func TestTransformParallelKeepsOrder(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "<div>%d</div><script>block%d()</script>", i, i)
	}
	doc := sb.String()
	jittery := jsobf.Func(func(_ context.Context, src string, _ jsobf.Options) (string, error) {
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
		return strings.ToUpper(src), nil
	})

	seq := transform(t, jittery, doc)
	par, err := (&Transformer{Obfuscator: jittery, Jobs: 6}).Transform(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, seq.Document, par.Document)
	assert.Equal(t, 25, par.Count(OutcomeObfuscate))
}

func TestTransformNoObfuscator(t *testing.T) {
	_, err := (&Transformer{}).Transform(context.Background(), `<script>x()</script>`)
	assert.ErrorIs(t, err, ErrNoObfuscator)

	res, err := (&Transformer{}).Transform(context.Background(), `<script src="a.js"></script><script></script>`)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestTransformCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u := &upper{}
	doc := `<script>a()</script><script>b()</script>`
	res, err := (&Transformer{Obfuscator: u}).Transform(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, doc, res.Document)
	assert.Len(t, res.Failures, 2)
	assert.ErrorIs(t, res.Failures[0], context.Canceled)
	assert.Equal(t, int32(0), u.calls.Load())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "obfuscated", OutcomeObfuscate.String())
	assert.Equal(t, "empty", OutcomeEmpty.String())
	assert.Equal(t, "opt-out", OutcomeOptOut.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}

func outcomes(res *Result) []Outcome {
	var out []Outcome
	for _, b := range res.Blocks {
		out = append(out, b.Outcome)
	}
	return out
}
